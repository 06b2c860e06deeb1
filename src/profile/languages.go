package profile

import (
	"sort"
	"strings"
)

// NoTranslation is the translation code that skips the translate stage.
const NoTranslation = "nt"

// AutoDetect is the source code used when an OCR language has no translator
// equivalent.
const AutoDetect = "auto"

type OcrProfile struct {
	Code       string `json:"code"`
	Language   string `json:"language"`
	IsVertical bool   `json:"is_vertical"`
}

type TranslationProfile struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// OCR returns the profile for a tesseract language code. Unknown codes are
// kept with the display name "Invalid" so installed-but-unlisted packs still work.
func OCR(code string) OcrProfile {
	name, ok := ocrLanguages[code]
	if !ok {
		name = "Invalid"
	}
	return OcrProfile{
		Code:       code,
		Language:   name,
		IsVertical: strings.Contains(strings.ToLower(name), "vertical"),
	}
}

// SourceCode maps the OCR language to the translator's source language code.
func (p OcrProfile) SourceCode() string {
	if c, ok := ocrToTranslator[p.Code]; ok {
		return c
	}
	return AutoDetect
}

// Translation returns the profile for a translator code; ok is false when the
// code is not in the table.
func Translation(code string) (TranslationProfile, bool) {
	for _, t := range translationLanguages {
		if t.Code == code {
			return t, true
		}
	}
	return TranslationProfile{Code: code}, false
}

// Disabled reports whether the profile is the No Translation sentinel.
func (t TranslationProfile) Disabled() bool { return t.Code == NoTranslation }

// TranslationLanguages lists the selectable targets, sentinel first.
func TranslationLanguages() []TranslationProfile {
	out := make([]TranslationProfile, len(translationLanguages))
	copy(out, translationLanguages)
	return out
}

// OCRLanguages returns profiles for the given installed codes (or every known
// code when installed is empty), sorted by display name.
func OCRLanguages(installed []string) []OcrProfile {
	codes := installed
	if len(codes) == 0 {
		for c := range ocrLanguages {
			codes = append(codes, c)
		}
	}
	out := make([]OcrProfile, 0, len(codes))
	for _, c := range codes {
		out = append(out, OCR(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}

var ocrToTranslator = map[string]string{
	"eng": "en", "nld": "nl", "dan": "da", "ces": "cs", "chi_sim": "zh",
	"bul": "bg", "est": "et", "fin": "fi", "fra": "fr", "deu": "de",
	"ell": "el", "hun": "hu", "ind": "id", "ita": "it", "jpn": "ja",
	"jpn_vert": "ja", "kor": "ko", "kor_vert": "ko", "lav": "lv", "lit": "lt",
	"nor": "nb", "pol": "pl", "por": "pt", "ron": "ro", "rus": "ru",
	"slk": "sk", "slv": "sl", "spa": "es", "swe": "sv", "tur": "tr",
	"ukr": "uk",
}

var translationLanguages = []TranslationProfile{
	{NoTranslation, "No Translation"},
	{"bg", "Bulgarian"},
	{"zh", "Chinese"},
	{"cs", "Czech"},
	{"da", "Danish"},
	{"nl", "Dutch"},
	{"en", "English"},
	{"et", "Estonian"},
	{"fi", "Finnish"},
	{"fr", "French"},
	{"de", "German"},
	{"el", "Greek"},
	{"hu", "Hungarian"},
	{"id", "Indonesian"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"lv", "Latvian"},
	{"lt", "Lithuanian"},
	{"nb", "Norwegian"},
	{"pl", "Polish"},
	{"pt", "Portuguese"},
	{"ro", "Romanian"},
	{"ru", "Russian"},
	{"sk", "Slovak"},
	{"sl", "Slovenian"},
	{"es", "Spanish"},
	{"sv", "Swedish"},
	{"tr", "Turkish"},
	{"uk", "Ukrainian"},
}

var ocrLanguages = map[string]string{
	"afr": "Afrikaans", "amh": "Amharic", "ara": "Arabic", "asm": "Assamese",
	"aze": "Azerbaijani", "aze_cyrl": "Azerbaijani - Cyrilic", "bel": "Belarusian",
	"ben": "Bengali", "bod": "Tibetan", "bos": "Bosnian", "bre": "Breton",
	"bul": "Bulgarian", "cat": "Catalan; Valencian", "ceb": "Cebuano", "ces": "Czech",
	"chi_sim": "Chinese - Simplified", "chi_tra": "Chinese - Traditional",
	"chr": "Cherokee", "cos": "Corsican", "cym": "Welsh", "dan": "Danish",
	"dan_frak": "Danish - Fraktur (contrib)", "deu": "German",
	"deu_frak": "German - Fraktur (contrib)", "dzo": "Dzongkha",
	"ell": "Greek, Modern (1453-)", "eng": "English", "enm": "English, Middle (1100-1500)",
	"epo": "Esperanto", "equ": "Math / equation detection module", "est": "Estonian",
	"eus": "Basque", "fao": "Faroese", "fas": "Persian", "fil": "Filipino (old - Tagalog)",
	"fin": "Finnish", "fra": "French", "frk": "German - Fraktur",
	"frm": "French, Middle (ca.1400-1600)", "fry": "Western Frisian",
	"gla": "Scottish Gaelic", "gle": "Irish", "glg": "Galician",
	"grc": "Greek, Ancient (to 1453) (contrib)", "guj": "Gujarati",
	"hat": "Haitian; Haitian Creole", "heb": "Hebrew", "hin": "Hindi", "hrv": "Croatian",
	"hun": "Hungarian", "hye": "Armenian", "iku": "Inuktitut", "ind": "Indonesian",
	"isl": "Icelandic", "ita": "Italian", "ita_old": "Italian - Old", "jav": "Javanese",
	"jpn": "Japanese", "jpn_vert": "Japanese Vertical", "kan": "Kannada",
	"kat": "Georgian", "kat_old": "Georgian - Old", "kaz": "Kazakh",
	"khm": "Central Khmer", "kir": "Kirghiz; Kyrgyz",
	"kmr": "Kurmanji (Kurdish - Latin Script)", "kor": "Korean",
	"kor_vert": "Korean (vertical)", "kur": "Kurdish (Arabic Script)", "lao": "Lao",
	"lat": "Latin", "lav": "Latvian", "lit": "Lithuanian", "ltz": "Luxembourgish",
	"mal": "Malayalam", "mar": "Marathi", "mkd": "Macedonian", "mlt": "Maltese",
	"mon": "Mongolian", "mri": "Maori", "msa": "Malay", "mya": "Burmese",
	"nep": "Nepali", "nld": "Dutch; Flemish", "nor": "Norwegian",
	"oci": "Occitan (post 1500)", "ori": "Oriya",
	"osd": "Orientation and script detection module", "pan": "Panjabi; Punjabi",
	"pol": "Polish", "por": "Portuguese", "pus": "Pushto; Pashto", "que": "Quechua",
	"ron": "Romanian; Moldavian; Moldovan", "rus": "Russian", "san": "Sanskrit",
	"sin": "Sinhala; Sinhalese", "slk": "Slovak", "slk_frak": "Slovak - Fraktur (contrib)",
	"slv": "Slovenian", "snd": "Sindhi", "spa": "Spanish; Castilian",
	"spa_old": "Spanish; Castilian - Old", "sqi": "Albanian", "srp": "Serbian",
	"srp_latn": "Serbian - Latin", "sun": "Sundanese", "swa": "Swahili",
	"swe": "Swedish", "syr": "Syriac", "tam": "Tamil", "tat": "Tatar", "tel": "Telugu",
	"tgk": "Tajik", "tgl": "Tagalog (new - Filipino)", "tha": "Thai", "tir": "Tigrinya",
	"ton": "Tonga", "tur": "Turkish", "uig": "Uighur; Uyghur", "ukr": "Ukrainian",
	"urd": "Urdu", "uzb": "Uzbek", "uzb_cyrl": "Uzbek - Cyrilic", "vie": "Vietnamese",
	"yid": "Yiddish", "yor": "Yoruba",
}
