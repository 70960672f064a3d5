// Package i18n holds the static UI translations served by /api/lang.
package i18n

import (
	"regexp"
	"sort"
)

// DefaultLanguage is served for malformed or unknown codes.
const DefaultLanguage = "en"

var validCode = regexp.MustCompile(`^[a-z]{2}$`)

var catalogs = map[string]map[string]string{
	"en": {
		"app_title":         "Database Schema Comparison",
		"local_database":    "Local Database",
		"remote_database":   "Remote Database",
		"loading":           "Loading database schemas...",
		"error":             "Error",
		"error_message":     "An error occurred while loading the data.",
		"retry":             "Retry",
		"schema_identical":  "Schema is identical",
		"schema_different":  "Schema has differences",
		"schema_missing":    "Schema missing",
		"table":             "Table",
		"tables":            "Tables",
		"column":            "Column",
		"columns":           "Columns",
		"type":              "Type",
		"missing_in_remote": "Missing in remote",
		"extra_in_remote":   "Extra in remote",
		"type_mismatch":     "Type mismatch",
		"different":         "Different",
		"powered_by":        "Powered by",
		"version":           "Version",
		"language":          "Language",
		"select_language":   "Select Language",
		"summary":           "%d identical, %d different",
	},
	"tr": {
		"app_title":         "Veritabanı Şema Karşılaştırma",
		"local_database":    "Yerel Veritabanı",
		"remote_database":   "Uzak Veritabanı",
		"loading":           "Veritabanı şemaları yükleniyor...",
		"error":             "Hata",
		"error_message":     "Veriler yüklenirken bir hata oluştu.",
		"retry":             "Tekrar Dene",
		"schema_identical":  "Şema aynı",
		"schema_different":  "Şemada farklılıklar var",
		"schema_missing":    "Şema eksik",
		"table":             "Tablo",
		"tables":            "Tablolar",
		"column":            "Sütun",
		"columns":           "Sütunlar",
		"type":              "Tip",
		"missing_in_remote": "Uzakta eksik",
		"extra_in_remote":   "Uzakta fazla",
		"type_mismatch":     "Tip uyuşmazlığı",
		"different":         "Farklı",
		"powered_by":        "Tasarlayan",
		"version":           "Sürüm",
		"language":          "Dil",
		"select_language":   "Dil Seçin",
		"summary":           "%d aynı, %d farklı",
	},
}

// Lookup returns the language actually served for code and a copy of its
// translations. Malformed and unknown codes fall back to DefaultLanguage.
func Lookup(code string) (string, map[string]string) {
	if !validCode.MatchString(code) {
		code = DefaultLanguage
	}
	cat, ok := catalogs[code]
	if !ok {
		code = DefaultLanguage
		cat = catalogs[DefaultLanguage]
	}
	out := make(map[string]string, len(cat))
	for k, v := range cat {
		out[k] = v
	}
	return code, out
}

// T translates key into code's language, falling back to the default
// language and then to the key itself.
func T(code, key string) string {
	if v, ok := catalogs[code][key]; ok {
		return v
	}
	if v, ok := catalogs[DefaultLanguage][key]; ok {
		return v
	}
	return key
}

// Languages returns the available language codes, sorted.
func Languages() []string {
	codes := make([]string, 0, len(catalogs))
	for c := range catalogs {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
