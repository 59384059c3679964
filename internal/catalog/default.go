package catalog

// Default returns the built-in lnk platform catalog. Group order here is the
// order the console renders.
func Default() *Catalog {
	return New([]Group{
		{
			Key:         "links",
			DisplayName: "Link Management",
			Permissions: []string{"links:view", "links:create", "links:edit", "links:delete", "links:export"},
		},
		{
			Key:         "qr",
			DisplayName: "QR Codes",
			Permissions: []string{"qr:view", "qr:create", "qr:edit", "qr:delete"},
		},
		{
			Key:         "campaigns",
			DisplayName: "Campaigns",
			Permissions: []string{"campaigns:view", "campaigns:create", "campaigns:edit", "campaigns:delete"},
		},
		{
			Key:         "analytics",
			DisplayName: "Analytics",
			Permissions: []string{"analytics:view", "analytics:export", "analytics:schedule_reports"},
		},
		{
			Key:         "team",
			DisplayName: "Team",
			Permissions: []string{"team:view", "team:invite", "team:manage_members", "team:manage_roles"},
		},
		{
			Key:         "billing",
			DisplayName: "Billing",
			Permissions: []string{"billing:view", "billing:manage"},
		},
		{
			Key:         "integrations",
			DisplayName: "Integrations & Webhooks",
			Permissions: []string{"integrations:view", "integrations:manage", "webhooks:view", "webhooks:manage"},
		},
		{
			Key:         "domains",
			DisplayName: "Custom Domains",
			Permissions: []string{"domains:view", "domains:manage"},
		},
	}, map[string]string{
		"links:view":                 "View links",
		"links:create":               "Create links",
		"links:edit":                 "Edit links",
		"links:delete":               "Delete links",
		"links:export":               "Export links",
		"qr:view":                    "View QR codes",
		"qr:create":                  "Create QR codes",
		"qr:edit":                    "Edit QR codes",
		"qr:delete":                  "Delete QR codes",
		"campaigns:view":             "View campaigns",
		"campaigns:create":           "Create campaigns",
		"campaigns:edit":             "Edit campaigns",
		"campaigns:delete":           "Delete campaigns",
		"analytics:view":             "View analytics",
		"analytics:export":           "Export analytics",
		"analytics:schedule_reports": "Schedule reports",
		"team:view":                  "View team",
		"team:invite":                "Invite members",
		"team:manage_members":        "Manage members",
		"team:manage_roles":          "Manage roles",
		"billing:view":               "View billing",
		"billing:manage":             "Manage billing",
		"integrations:view":          "View integrations",
		"integrations:manage":        "Manage integrations",
		"webhooks:view":              "View webhooks",
		"webhooks:manage":            "Manage webhooks",
		"domains:view":               "View custom domains",
		"domains:manage":             "Manage custom domains",
	})
}
