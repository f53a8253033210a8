package email

// PreviewData holds sample template data, keyed by template, for previews
// and template tests.
var PreviewData = map[Template]map[string]string{
	TemplateReferralConfirmation: {
		"ReferrerName": "Asha",
		"RefereeName":  "Vikram",
		"Course":       "Data Science",
	},
}
