package template

// Builtin returns a registry holding every built-in section template.
func Builtin() *Registry {
	r := NewRegistry()
	for _, b := range builtinBuilders() {
		r.Register(b().ID, b)
	}
	return r
}

func builtinBuilders() []Builder {
	return []Builder{
		heroTemplate,
		aboutTemplate,
		featuresTemplate,
		projectsTemplate,
		skillsTemplate,
		timelineTemplate,
		testimonialsTemplate,
		statsTemplate,
		galleryTemplate,
		faqTemplate,
		ctaTemplate,
		contactTemplate,
		socialLinksTemplate,
		navbarTemplate,
		footerTemplate,
		customTemplate,
	}
}

func heroTemplate() Template {
	return Template{
		ID:          "hero",
		Name:        "Hero",
		Description: "Large introductory banner with headline, subtitle and call to action.",
		Icon:        "sparkles",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Hi, I'm ..."},
			{Key: "subtitle", Label: "Subtitle", Type: FieldShortText, DefaultValue: "Software engineer"},
			{Key: "description", Label: "Description", Type: FieldLongText, DefaultValue: ""},
			{Key: "cta_text", Label: "Button text", Type: FieldShortText, DefaultValue: "See my work"},
			{Key: "cta_url", Label: "Button link", Type: FieldShortText, DefaultValue: "/projects"},
			{Key: "image", Label: "Background image", Type: FieldShortText, DefaultValue: ""},
		},
	}
}

func aboutTemplate() Template {
	return Template{
		ID:          "about",
		Name:        "About",
		Description: "Biography block with portrait and highlights.",
		Icon:        "user",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "About me"},
			{Key: "bio", Label: "Biography", Type: FieldLongText, DefaultValue: ""},
			{Key: "image", Label: "Portrait", Type: FieldShortText, DefaultValue: ""},
			{Key: "highlights", Label: "Highlights", Type: FieldArray, Description: "Short bullet points", DefaultValue: []any{}},
		},
	}
}

func featuresTemplate() Template {
	return Template{
		ID:          "features",
		Name:        "Features",
		Description: "Grid of feature cards with icon, title and text.",
		Icon:        "grid",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "What I do"},
			{Key: "items", Label: "Features", Type: FieldArray, DefaultValue: []any{
				map[string]any{"icon": "code", "title": "Backend", "description": ""},
			}},
		},
	}
}

func projectsTemplate() Template {
	return Template{
		ID:          "projects",
		Name:        "Projects showcase",
		Description: "Featured projects pulled from the project list.",
		Icon:        "folder",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Selected projects"},
			{Key: "subtitle", Label: "Subtitle", Type: FieldShortText, DefaultValue: ""},
			{Key: "show_featured_only", Label: "Featured only", Type: FieldJSON, DefaultValue: map[string]any{"enabled": true, "limit": float64(6)}},
		},
	}
}

func skillsTemplate() Template {
	return Template{
		ID:          "skills",
		Name:        "Skills",
		Description: "Tag list of skills and technologies.",
		Icon:        "tag",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Skills"},
			{Key: "skills", Label: "Skills", Type: FieldArray, DefaultValue: []any{"Go", "PostgreSQL"}},
		},
	}
}

func timelineTemplate() Template {
	return Template{
		ID:          "timeline",
		Name:        "Timeline",
		Description: "Chronological list of positions or milestones.",
		Icon:        "clock",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Experience"},
			{Key: "entries", Label: "Entries", Type: FieldArray, DefaultValue: []any{
				map[string]any{"period": "", "role": "", "company": "", "summary": "", "current": false},
			}},
		},
	}
}

func testimonialsTemplate() Template {
	return Template{
		ID:          "testimonials",
		Name:        "Testimonials",
		Description: "Quotes from clients or colleagues.",
		Icon:        "quote",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Kind words"},
			{Key: "testimonials", Label: "Testimonials", Type: FieldArray, DefaultValue: []any{
				map[string]any{"name": "", "role": "", "quote": "", "avatar": ""},
			}},
		},
	}
}

func statsTemplate() Template {
	return Template{
		ID:          "stats",
		Name:        "Stats",
		Description: "Row of headline numbers.",
		Icon:        "chart",
		Fields: []Field{
			{Key: "stats", Label: "Stats", Type: FieldArray, DefaultValue: []any{
				map[string]any{"label": "Years of experience", "value": "5"},
			}},
		},
	}
}

func galleryTemplate() Template {
	return Template{
		ID:          "gallery",
		Name:        "Gallery",
		Description: "Image grid.",
		Icon:        "image",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Gallery"},
			{Key: "images", Label: "Images", Type: FieldArray, Description: "Image URLs", DefaultValue: []any{}},
		},
	}
}

func faqTemplate() Template {
	return Template{
		ID:          "faq",
		Name:        "FAQ",
		Description: "Frequently asked questions.",
		Icon:        "help",
		Fields: []Field{
			{Key: "faqs", Label: "Questions", Type: FieldArray, DefaultValue: []any{}},
		},
	}
}

func ctaTemplate() Template {
	return Template{
		ID:          "cta",
		Name:        "Call to action",
		Description: "Short banner pushing the visitor to a single action.",
		Icon:        "megaphone",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Let's work together"},
			{Key: "text", Label: "Text", Type: FieldLongText, DefaultValue: ""},
			{Key: "button_text", Label: "Button text", Type: FieldShortText, DefaultValue: "Contact me"},
			{Key: "button_url", Label: "Button link", Type: FieldShortText, DefaultValue: "/contact"},
		},
	}
}

func contactTemplate() Template {
	return Template{
		ID:          "contact",
		Name:        "Contact",
		Description: "Contact details and form settings.",
		Icon:        "mail",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: "Get in touch"},
			{Key: "email", Label: "Email", Type: FieldShortText, DefaultValue: ""},
			{Key: "location", Label: "Location", Type: FieldShortText, DefaultValue: ""},
			{Key: "form", Label: "Form settings", Type: FieldJSON, DefaultValue: map[string]any{
				"enabled":         true,
				"success_message": "Thanks, I'll get back to you soon.",
			}},
		},
	}
}

func socialLinksTemplate() Template {
	return Template{
		ID:          "social_links",
		Name:        "Social links",
		Description: "Links to external profiles.",
		Icon:        "link",
		Fields: []Field{
			{Key: "links", Label: "Links", Type: FieldArray, DefaultValue: []any{
				map[string]any{"name": "GitHub", "url": "https://github.com/", "enabled": true},
			}},
		},
	}
}

func navbarTemplate() Template {
	return Template{
		ID:          "navbar",
		Name:        "Navigation bar",
		Description: "Site logo and navigation links.",
		Icon:        "menu",
		Fields: []Field{
			{Key: "logo_text", Label: "Logo text", Type: FieldShortText, DefaultValue: "Portfolio"},
			{Key: "links", Label: "Links", Type: FieldArray, DefaultValue: []any{
				map[string]any{"text": "Home", "url": "/"},
				map[string]any{"text": "Projects", "url": "/projects"},
			}},
		},
	}
}

func footerTemplate() Template {
	return Template{
		ID:          "footer",
		Name:        "Footer",
		Description: "Copyright line and secondary links.",
		Icon:        "layout",
		Fields: []Field{
			{Key: "copyright", Label: "Copyright", Type: FieldShortText, DefaultValue: ""},
			{Key: "links", Label: "Links", Type: FieldArray, DefaultValue: []any{}},
		},
	}
}

func customTemplate() Template {
	return Template{
		ID:          "custom",
		Name:        "Custom",
		Description: "Free-form section edited as raw JSON.",
		Icon:        "code",
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldShortText, DefaultValue: ""},
			{Key: "data", Label: "Data", Type: FieldJSON, DefaultValue: map[string]any{}},
		},
	}
}
