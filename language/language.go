// Package language resolves human language names to ISO 639-1 codes.
package language

import (
	"fmt"
	"sort"
	"strings"
)

// PivotCode is the language all retrieval, generation and verification run
// in. Queries in other languages are translated in and answers translated
// back out.
const PivotCode = "en"

var nameToCode = map[string]string{
	"afrikaans": "af", "amharic": "am", "arabic": "ar", "azerbaijani": "az",
	"belarusian": "be", "bengali": "bn", "bulgarian": "bg", "catalan": "ca",
	"cebuano": "ceb", "czech": "cs", "welsh": "cy", "danish": "da",
	"german": "de", "greek": "el", "english": "en", "esperanto": "eo",
	"spanish": "es", "estonian": "et", "basque": "eu", "persian": "fa",
	"finnish": "fi", "filipino": "fil", "french": "fr", "western frisian": "fy",
	"irish": "ga", "scots gaelic": "gd", "galician": "gl", "gujarati": "gu",
	"hausa": "ha", "hebrew": "he", "hindi": "hi", "croatian": "hr",
	"hungarian": "hu", "armenian": "hy", "indonesian": "id", "igbo": "ig",
	"icelandic": "is", "italian": "it", "japanese": "ja", "javanese": "jv",
	"georgian": "ka", "kazakh": "kk", "khmer": "km", "kannada": "kn",
	"korean": "ko", "kurdish": "ku", "kyrgyz": "ky", "latin": "la",
	"luxembourgish": "lb", "lao": "lo", "lithuanian": "lt", "latvian": "lv",
	"malagasy": "mg", "macedonian": "mk", "malayalam": "ml", "mongolian": "mn",
	"marathi": "mr", "malay": "ms", "maltese": "mt", "burmese": "my",
	"nepali": "ne", "dutch": "nl", "norwegian": "no", "nyanja": "ny",
	"odia": "or", "punjabi": "pa", "polish": "pl", "pashto": "ps",
	"portuguese": "pt", "romanian": "ro", "russian": "ru", "sindhi": "sd",
	"sinhala": "si", "slovak": "sk", "slovenian": "sl", "samoan": "sm",
	"shona": "sn", "somali": "so", "albanian": "sq", "serbian": "sr",
	"sesotho": "st", "sundanese": "su", "swedish": "sv", "swahili": "sw",
	"tamil": "ta", "telugu": "te", "tajik": "tg", "thai": "th", "turkish": "tr",
	"ukrainian": "uk", "urdu": "ur", "uzbek": "uz", "vietnamese": "vi",
	"xhosa": "xh", "yiddish": "yi", "yoruba": "yo", "chinese": "zh",
	"zulu": "zu",
}

// Common alternative spellings and regional names users type in.
var variations = map[string]string{
	"mandarin":             "zh",
	"mandarin chinese":     "zh",
	"chinese mandarin":     "zh",
	"simplified chinese":   "zh",
	"traditional chinese":  "zh",
	"standard chinese":     "zh",
	"brazilian portuguese": "pt",
	"portuguese brazilian": "pt",
	"castilian":            "es",
	"castellano":           "es",
	"farsi":                "fa",
	"tagalog":              "fil",
}

// UnsupportedError is returned when a language name is not in the table.
// Its message lists the supported names so the caller can surface them.
type UnsupportedError struct {
	Name      string
	Available []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported language: %s\navailable languages: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Resolve maps a language name (case-insensitive, surrounding space
// ignored) to its ISO 639-1 code.
func Resolve(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if code, ok := nameToCode[key]; ok {
		return code, nil
	}
	if code, ok := variations[key]; ok {
		return code, nil
	}
	return "", &UnsupportedError{Name: key, Available: Names()}
}

// NameOf returns the canonical English name for an ISO 639-1 code, or
// the code itself when unknown.
func NameOf(code string) string {
	for name, c := range nameToCode {
		if c == code {
			return name
		}
	}
	return code
}

// Names returns every accepted language name, sorted.
func Names() []string {
	out := make([]string, 0, len(nameToCode)+len(variations))
	for name := range nameToCode {
		out = append(out, name)
	}
	for name := range variations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
