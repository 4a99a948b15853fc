package models

// DefaultLocale is the locale the base text columns are authored in. Any
// other locale falls back to the base text when no localized variant exists.
// Locale selection is always an explicit parameter, never ambient state.
const DefaultLocale = "en"

func localized(base string, variant *string, locale string) string {
	if locale == "" || locale == DefaultLocale {
		return base
	}
	if variant == nil || *variant == "" {
		return base
	}
	return *variant
}

func (s *Survey) NameIn(locale string) string {
	return localized(s.Name, s.LocaleName, locale)
}

func (s *Section) NameIn(locale string) string {
	return localized(s.Name, s.LocaleName, locale)
}

func (q *Question) TextIn(locale string) string {
	return localized(q.Text, q.LocaleText, locale)
}

func (o *Option) TextIn(locale string) string {
	return localized(o.Text, o.LocaleText, locale)
}
