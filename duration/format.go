package duration

import (
	"fmt"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

type forms struct{ one, other string }

var translations = map[language.Tag]map[string]forms{
	language.English: {
		Minute.Key(): {"%[1]d minute", "%[1]d minutes"},
		Hour.Key():   {"%[1]d hour", "%[1]d hours"},
		Day.Key():    {"%[1]d day", "%[1]d days"},
		Week.Key():   {"%[1]d week", "%[1]d weeks"},
		Month.Key():  {"%[1]d month", "%[1]d months"},
		Year.Key():   {"%[1]d year", "%[1]d years"},
	},
	language.French: {
		Minute.Key(): {"%[1]d minute", "%[1]d minutes"},
		Hour.Key():   {"%[1]d heure", "%[1]d heures"},
		Day.Key():    {"%[1]d jour", "%[1]d jours"},
		Week.Key():   {"%[1]d semaine", "%[1]d semaines"},
		Month.Key():  {"%[1]d mois", "%[1]d mois"},
		Year.Key():   {"%[1]d an", "%[1]d ans"},
	},
}

// Supported lists the locales with duration translations, default first
var Supported = []language.Tag{language.English, language.French}

var (
	matcher = language.NewMatcher(Supported)
	cat     = mustCatalog()
)

func mustCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, f := range msgs {
			msg := plural.Selectf(1, "%d", "one", f.one, "other", f.other)
			if err := b.Set(tag, key, msg); err != nil {
				panic(fmt.Sprintf("duration: invalid catalog entry %s/%s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Formatter renders durations for one locale
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter creates a formatter for lang (a BCP 47 tag or an
// Accept-Language list). Unsupported locales fall back to English.
func NewFormatter(lang string) *Formatter {
	_, idx := language.MatchStrings(matcher, lang)
	tag := Supported[idx]
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Locale returns the locale the formatter resolved to
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Format renders seconds as a rounded count of a single unit
func (f *Formatter) Format(seconds float64) string {
	u, n := Bucket(seconds)
	return f.printer.Sprintf(u.Key(), n)
}

// FormatDuration is Format for a time.Duration
func (f *Formatter) FormatDuration(d time.Duration) string {
	return f.Format(d.Seconds())
}
