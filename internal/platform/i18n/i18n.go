// Package i18n localizes participant-facing messages.
//
// Locale catalogs are YAML files embedded at build time; the request
// language is negotiated from the lang query parameter and the
// Accept-Language header against the supported set.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

var defaultTag = language.AmericanEnglish

var bundle = mustLoadBundle()

type loadedBundle struct {
	printers map[language.Tag]*message.Printer
	matcher  language.Matcher
	tags     []language.Tag
}

func mustLoadBundle() *loadedBundle {
	cat, tags, err := loadCatalog(embeddedLocaleFS)
	if err != nil {
		panic("i18n: load embedded catalogs: " + err.Error())
	}
	printers := make(map[language.Tag]*message.Printer, len(tags))
	for _, tag := range tags {
		printers[tag] = message.NewPrinter(tag, message.Catalog(cat))
	}
	return &loadedBundle{
		printers: printers,
		matcher:  language.NewMatcher(tags),
		tags:     tags,
	}
}

// SupportedTags returns the locales with an embedded catalog.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(bundle.tags))
	copy(out, bundle.tags)
	return out
}

// DefaultTag returns the fallback locale.
func DefaultTag() language.Tag {
	return defaultTag
}

// ResolveTag determines the best supported language for the request.
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return defaultTag
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, err := language.Parse(langValue); err == nil {
			return match(tag)
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return match(tags...)
		}
	}

	return defaultTag
}

func match(preferred ...language.Tag) language.Tag {
	_, index, confidence := bundle.matcher.Match(preferred...)
	if confidence == language.No {
		return defaultTag
	}
	return bundle.tags[index]
}

// Sprintf renders a catalog message for the given locale.
func Sprintf(tag language.Tag, key string, args ...any) string {
	printer, ok := bundle.printers[tag]
	if !ok {
		printer = bundle.printers[defaultTag]
	}
	return printer.Sprintf(key, args...)
}

// LocalizeError resolves a user-safe message for a domain error. Errors
// without a catalog entry fall back to the HTTP status text.
func LocalizeError(tag language.Tag, err error) string {
	if err == nil {
		return ""
	}
	code := apperrors.CodeOf(err)
	if code != apperrors.CodeUnknown {
		key := "error." + strings.ToLower(string(code))
		if localized := Sprintf(tag, key); localized != key {
			return localized
		}
	}
	return http.StatusText(apperrors.HTTPStatus(err))
}
