package factfinder

// Header lists the feed columns in file order.
var Header = []string{
	"ProductNumber",
	"Master",
	"Name",
	"Brand",
	"CategoryPath",
	"Deeplink",
	"Description",
	"ImageUrl",
	"Price",
	"FilterAttributes",
}

// FeedRow is one record of the product feed. Master equals ProductNumber on
// master rows and holds the parent product id on variant rows.
type FeedRow struct {
	ProductNumber    string
	Master           string
	Name             string
	Brand            string
	CategoryPath     string
	Deeplink         string
	Description      string
	ImageURL         string
	Price            string
	FilterAttributes string
}

// Record returns the row values in Header order.
func (r FeedRow) Record() []string {
	return []string{
		r.ProductNumber,
		r.Master,
		r.Name,
		r.Brand,
		r.CategoryPath,
		r.Deeplink,
		r.Description,
		r.ImageURL,
		r.Price,
		r.FilterAttributes,
	}
}

func (r FeedRow) IsMaster() bool {
	return r.ProductNumber == r.Master
}
