package handlers

// Error taxonomy codes surfaced to the rendering surface.
const (
	codeAuthFailure   = "auth_failure"
	codeQuotaExceeded = "quota_exceeded"
	codeValidation    = "validation_failure"
	codeProviderError = "provider_error"
	codeEmptyResult   = "empty_result"
	codeConfiguration = "configuration_error"
)

// The tool is used by a Polish company; every user-facing message ships in
// Polish and English and is picked per request by the i18n middleware.
var messages = map[string]map[string]string{
	codeAuthFailure: {
		"pl": "Bledne haslo lub brak dostepu.",
		"en": "Invalid password or no access.",
	},
	codeQuotaExceeded: {
		"pl": "Limit generowan zostal wyczerpany. Sprobuj ponownie pozniej.",
		"en": "Generation limit reached. Try again later.",
	},
	codeValidation: {
		"pl": "Nieprawidlowe dane wejsciowe. Sprawdz formularz.",
		"en": "Invalid input. Check the form.",
	},
	codeProviderError: {
		"pl": "Blad zewnetrznego generatora. Mozesz sprobowac ponownie.",
		"en": "The external generator failed. You can retry manually.",
	},
	codeEmptyResult: {
		"pl": "Generator nie zwrocil obrazu. Szczegoly odpowiedzi ponizej.",
		"en": "The generator returned no image. Raw response attached.",
	},
	codeConfiguration: {
		"pl": "Blad konfiguracji. Skontaktuj sie z administratorem.",
		"en": "Configuration error. Contact the administrator.",
	},
}

func localizedMessage(code, locale string) string {
	byLocale, ok := messages[code]
	if !ok {
		return code
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale["en"]
}
