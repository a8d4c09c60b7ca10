package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocaleFS embed.FS

// localeFile is the on-disk shape of one locale catalog.
type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// loadCatalog parses every embedded locale file into a message catalog.
func loadCatalog(localeFS fs.FS) (catalog.Catalog, []language.Tag, error) {
	paths, err := fs.Glob(localeFS, "locales/*.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no locale catalogs found")
	}
	sort.Strings(paths)

	builder := catalog.NewBuilder(catalog.Fallback(defaultTag))
	var tags []language.Tag
	seenDefault := false

	for _, path := range paths {
		data, err := fs.ReadFile(localeFS, path)
		if err != nil {
			return nil, nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if file.Locale == "" {
			return nil, nil, fmt.Errorf("catalog %s: locale is required", path)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog %s: parse locale %q: %w", path, file.Locale, err)
		}
		if len(file.Messages) == 0 {
			return nil, nil, fmt.Errorf("catalog %s: messages map is required", path)
		}
		for key, value := range file.Messages {
			if err := builder.SetString(tag, key, value); err != nil {
				return nil, nil, fmt.Errorf("catalog %s: register %q: %w", path, key, err)
			}
		}
		tags = append(tags, tag)
		if tag == defaultTag {
			seenDefault = true
		}
	}

	if !seenDefault {
		return nil, nil, fmt.Errorf("base locale %s is not defined in catalogs", defaultTag)
	}
	return builder, tags, nil
}
