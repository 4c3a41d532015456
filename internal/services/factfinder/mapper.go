package factfinder

import (
	"fmt"
	"iter"
	"net/url"
	"slices"
	"strings"

	"ffbridge/internal/services/shopify"

	"golang.org/x/net/html"
)

const (
	defaultVariantTitle = "Default Title"
	uncategorized       = "Uncategorized"
)

// RowMapper flattens Shopify products into feed rows.
type RowMapper struct{}

func NewRowMapper() *RowMapper {
	return &RowMapper{}
}

// Map yields one master row per product, followed by one row per variant
// when the product has more than one variant.
func (m *RowMapper) Map(batch []shopify.Product, shopDomain string) iter.Seq[FeedRow] {
	return func(yield func(FeedRow) bool) {
		for i := range batch {
			if !m.mapProduct(&batch[i], shopDomain, yield) {
				return
			}
		}
	}
}

func (m *RowMapper) mapProduct(p *shopify.Product, shopDomain string, yield func(FeedRow) bool) bool {
	masterID := p.LegacyResourceID
	title := translated(p.Translations, "title", p.Title)
	description := stripTags(translated(p.Translations, "body_html", p.DescriptionHTML))
	categoryPath := buildCategoryPath(p.Category)
	deeplink := buildDeeplink(shopDomain, p.Handle, p.OnlineStoreURL)

	imageURL := ""
	if images := p.ImageURLs(); len(images) > 0 {
		imageURL = images[0]
	}

	variants := p.VariantList()
	masterPrice := ""
	if len(variants) > 0 {
		masterPrice = variants[0].Price
	}

	master := FeedRow{
		ProductNumber:    masterID,
		Master:           masterID,
		Name:             title,
		Brand:            p.Vendor,
		CategoryPath:     categoryPath,
		Deeplink:         deeplink,
		Description:      description,
		ImageURL:         imageURL,
		Price:            masterPrice,
		FilterAttributes: masterFilterAttributes(variants),
	}
	if !yield(master) {
		return false
	}

	if len(variants) < 2 {
		return true
	}

	for _, v := range variants {
		variantTitle := translated(v.Translations, "option1", v.Title)
		if variantTitle == defaultVariantTitle {
			variantTitle = ""
		}

		row := master
		row.ProductNumber = v.LegacyResourceID
		row.Name = strings.TrimSpace(title + " " + variantTitle)
		row.Price = v.Price
		row.FilterAttributes = variantFilterAttributes(v.SelectedOptions)
		if !yield(row) {
			return false
		}
	}
	return true
}

// translated returns the first non-empty translation for key, or fallback.
func translated(translations []shopify.Translation, key, fallback string) string {
	for _, t := range translations {
		if t.Key == key && t.Value != "" {
			return t.Value
		}
	}
	return fallback
}

func buildCategoryPath(category *shopify.TaxonomyCategory) string {
	if category == nil || category.FullName == "" {
		return uncategorized
	}
	path := strings.ReplaceAll(category.FullName, " > ", "/")
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

func buildDeeplink(shopDomain, handle string, onlineStoreURL *string) string {
	if handle != "" {
		return fmt.Sprintf("https://%s/products/%s", shopDomain, handle)
	}
	if onlineStoreURL != nil {
		return *onlineStoreURL
	}
	return ""
}

func skipOption(opt shopify.SelectedOption) bool {
	return opt.Name == "" || opt.Value == "" || (opt.Name == "Title" && opt.Value == defaultVariantTitle)
}

// masterFilterAttributes groups the options of all variants by name, keeping
// each distinct value once in first-seen order.
func masterFilterAttributes(variants []shopify.Variant) string {
	var names []string
	values := make(map[string][]string)

	for _, v := range variants {
		for _, opt := range v.SelectedOptions {
			if skipOption(opt) {
				continue
			}
			seen, ok := values[opt.Name]
			if !ok {
				names = append(names, opt.Name)
			}
			if !slices.Contains(seen, opt.Value) {
				values[opt.Name] = append(seen, opt.Value)
			}
		}
	}

	var pairs []string
	for _, name := range names {
		for _, value := range values[name] {
			pairs = append(pairs, name+"="+value)
		}
	}
	return joinAttributes(pairs)
}

func variantFilterAttributes(options []shopify.SelectedOption) string {
	var pairs []string
	for _, opt := range options {
		if skipOption(opt) {
			continue
		}
		pairs = append(pairs, opt.Name+"="+opt.Value)
	}
	return joinAttributes(pairs)
}

func joinAttributes(pairs []string) string {
	if len(pairs) == 0 {
		return ""
	}
	return "|" + strings.Join(pairs, "|") + "|"
}

// stripTags drops every markup token and keeps the raw text between them.
func stripTags(markup string) string {
	if markup == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Raw())
		}
	}
}
