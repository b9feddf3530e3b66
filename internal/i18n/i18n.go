// Package i18n holds the message catalog for user-facing error details.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	KeyProductNotFound       = "product.not_found"
	KeyProductDeleteNotFound = "product.delete_not_found"
)

// Default is the language used when nothing better matches.
var Default = language.BrazilianPortuguese

var supported = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

var entries = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		KeyProductNotFound:       "Produto com id: %s não encontrado",
		KeyProductDeleteNotFound: "Não foi possível deletar o produto com id: %s. Produto não existe",
	},
	language.English: {
		KeyProductNotFound:       "Product with id %s not found",
		KeyProductDeleteNotFound: "Could not delete product with id %s: product does not exist",
	},
}

// Translator resolves message keys for a negotiated language.
type Translator struct {
	catalog catalog.Catalog
	matcher language.Matcher
}

// New builds a Translator over the built-in catalog.
func New() *Translator {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for tag, msgs := range entries {
		for key, msg := range msgs {
			// SetString only fails for malformed messages; the table above is static.
			_ = b.SetString(tag, key, msg)
		}
	}
	return &Translator{
		catalog: b,
		matcher: language.NewMatcher(supported),
	}
}

// Match picks the supported language closest to an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}

// Sprintf renders key in tag. Identifiers should be passed pre-formatted as
// strings, the printer would otherwise apply locale digit grouping.
func (t *Translator) Sprintf(tag language.Tag, key string, args ...any) string {
	p := message.NewPrinter(tag, message.Catalog(t.catalog))
	return p.Sprintf(key, args...)
}
