package shopify

// Product is one catalog entry as returned by the products GraphQL query.
type Product struct {
	ID               string            `json:"id"`
	LegacyResourceID string            `json:"legacyResourceId"`
	Title            string            `json:"title"`
	DescriptionHTML  string            `json:"descriptionHtml"`
	Translations     []Translation     `json:"translations"`
	Vendor           string            `json:"vendor"`
	Handle           string            `json:"handle"`
	OnlineStoreURL   *string           `json:"onlineStoreUrl"`
	Category         *TaxonomyCategory `json:"category"`
	Images           ImageConnection   `json:"images"`
	Variants         VariantConnection `json:"variants"`
}

// Variant is one purchasable option of a product.
type Variant struct {
	ID               string           `json:"id"`
	LegacyResourceID string           `json:"legacyResourceId"`
	Title            string           `json:"title"`
	Price            string           `json:"price"`
	Translations     []Translation    `json:"translations"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
}

// Translation is a localized override of a product or variant field.
type Translation struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TaxonomyCategory is a node of Shopify's standard product taxonomy. FullName is
// the whole hierarchy joined by " > ".
type TaxonomyCategory struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type Image struct {
	URL string `json:"url"`
}

type ImageConnection struct {
	Edges []struct {
		Node Image `json:"node"`
	} `json:"edges"`
}

type VariantConnection struct {
	Edges []struct {
		Node Variant `json:"node"`
	} `json:"edges"`
}

type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

type ProductConnection struct {
	PageInfo PageInfo `json:"pageInfo"`
	Edges    []struct {
		Node Product `json:"node"`
	} `json:"edges"`
}

// ImageURLs returns the product image URLs in declaration order.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images.Edges))
	for _, edge := range p.Images.Edges {
		urls = append(urls, edge.Node.URL)
	}
	return urls
}

// VariantList returns the product variants in declaration order.
func (p *Product) VariantList() []Variant {
	variants := make([]Variant, 0, len(p.Variants.Edges))
	for _, edge := range p.Variants.Edges {
		variants = append(variants, edge.Node)
	}
	return variants
}

// Nodes unwraps the edges of a page.
func (c *ProductConnection) Nodes() []Product {
	products := make([]Product, 0, len(c.Edges))
	for _, edge := range c.Edges {
		products = append(products, edge.Node)
	}
	return products
}
