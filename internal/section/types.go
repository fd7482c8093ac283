// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package section

var alignOptions = []string{"left", "center", "right"}

var qaItem = []Field{
	{Name: "question", Label: "Question", Kind: KindText, Aliases: []string{"q", "title"}},
	{Name: "answer", Label: "Answer", Kind: KindHTML, Aliases: []string{"a", "content", "body"}},
}

func builtinSpecs() []*Spec {
	return []*Spec{
		{
			Type:  TypeHero,
			Label: "Hero",
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Default: "Page title", Required: true, Aliases: []string{"heading"}},
				{Name: "subtitle", Label: "Subtitle", Kind: KindTextarea, Aliases: []string{"subheading", "text"}},
				{Name: "ctaLabel", Label: "Button label", Kind: KindText, Aliases: []string{"buttonText"}},
				{Name: "ctaHref", Label: "Button link", Kind: KindURL, Aliases: []string{"buttonUrl", "buttonHref"}},
				{Name: "backgroundImage", Label: "Background image", Kind: KindImage, Aliases: []string{"image"}},
				{Name: "backgroundColor", Label: "Background color", Kind: KindColor},
				{Name: "textColor", Label: "Text color", Kind: KindColor},
				{Name: "align", Label: "Alignment", Kind: KindSelect, Options: alignOptions, Default: "center"},
				{Name: "fullHeight", Label: "Full height", Kind: KindBool},
			},
		},
		{
			Type:  TypeText,
			Label: "Text",
			Fields: []Field{
				{Name: "html", Label: "Content", Kind: KindHTML, Default: "<p></p>", Aliases: []string{"body", "content"}},
				{Name: "maxWidth", Label: "Width", Kind: KindSelect, Options: []string{"narrow", "normal", "wide"}, Default: "normal"},
			},
			upgrade: upgradeMarkdown,
		},
		{
			Type:  TypeRichText,
			Label: "Rich text",
			Fields: []Field{
				{Name: "html", Label: "Content", Kind: KindHTML, Default: "<p></p>", Aliases: []string{"body", "content"}},
				{Name: "backgroundColor", Label: "Background color", Kind: KindColor},
				{Name: "padding", Label: "Padding (px)", Kind: KindNumber, Default: 24, Min: 0, Max: 200},
			},
			upgrade: upgradeMarkdown,
		},
		{
			Type:  TypeRawHTML,
			Label: "Raw HTML",
			Fields: []Field{
				{Name: "html", Label: "HTML", Kind: KindHTML, Aliases: []string{"code", "content"}},
			},
		},
		{
			Type:  TypeColumns,
			Label: "Two columns",
			Fields: []Field{
				{Name: "leftHtml", Label: "Left column", Kind: KindHTML, Default: "<p></p>", Aliases: []string{"left"}},
				{Name: "rightHtml", Label: "Right column", Kind: KindHTML, Default: "<p></p>", Aliases: []string{"right"}},
				{Name: "gap", Label: "Gap (px)", Kind: KindNumber, Default: 24, Min: 0, Max: 200},
				{Name: "ratio", Label: "Ratio", Kind: KindSelect, Options: []string{"50-50", "33-67", "67-33"}, Default: "50-50"},
				{Name: "stackOnMobile", Label: "Stack on mobile", Kind: KindBool, Default: true},
			},
		},
		{
			Type:  TypeImage,
			Label: "Image",
			Fields: []Field{
				{Name: "src", Label: "Image", Kind: KindImage, Required: true, Aliases: []string{"url", "image"}},
				{Name: "alt", Label: "Alt text", Kind: KindText},
				{Name: "caption", Label: "Caption", Kind: KindText},
				{Name: "width", Label: "Width (%)", Kind: KindNumber, Default: 100, Min: 5, Max: 100},
				{Name: "align", Label: "Alignment", Kind: KindSelect, Options: alignOptions, Default: "center"},
				{Name: "link", Label: "Link", Kind: KindURL, Aliases: []string{"href"}},
			},
		},
		{
			Type:  TypeFAQ,
			Label: "FAQ",
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Default: "Frequently asked questions"},
				{
					Name: "items", Label: "Questions", Kind: KindItems, Item: qaItem, Required: true,
					Aliases: []string{"faqs", "questions", "faq"},
					Default: []any{map[string]any{"question": "Question", "answer": "<p>Answer</p>"}},
				},
			},
		},
		{
			Type:  TypeEmbed,
			Label: "Embed",
			Fields: []Field{
				{Name: "url", Label: "Video or map URL", Kind: KindURL, Required: true, Aliases: []string{"src"}},
				{Name: "title", Label: "Title", Kind: KindText},
				{Name: "aspectRatio", Label: "Aspect ratio", Kind: KindSelect, Options: []string{"16:9", "4:3", "1:1"}, Default: "16:9"},
				{Name: "height", Label: "Height (px)", Kind: KindNumber, Default: 450, Min: 100, Max: 2000},
			},
		},
		{
			Type:  TypeCallout,
			Label: "Callout",
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText},
				{Name: "html", Label: "Content", Kind: KindHTML, Default: "<p></p>", Aliases: []string{"body", "text"}},
				{Name: "variant", Label: "Variant", Kind: KindSelect, Options: []string{"info", "success", "warning", "danger"}, Default: "info", Aliases: []string{"tone", "kind"}},
				{Name: "icon", Label: "Show icon", Kind: KindBool, Default: true},
			},
		},
		{
			Type:  TypeAccordion,
			Label: "Accordion",
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText},
				{
					Name: "items", Label: "Panels", Kind: KindItems, Item: qaItem, Required: true,
					Aliases: []string{"panels", "faqs"},
					Default: []any{map[string]any{"question": "Panel title", "answer": "<p>Panel content</p>"}},
				},
				{Name: "allowMultiple", Label: "Allow several open", Kind: KindBool},
				{Name: "openFirst", Label: "Open first panel", Kind: KindBool},
			},
		},
		{
			Type:  TypePageStyle,
			Label: "Page style",
			Fields: []Field{
				{Name: "backgroundColor", Label: "Background color", Kind: KindColor},
				{Name: "textColor", Label: "Text color", Kind: KindColor},
				{Name: "accentColor", Label: "Accent color", Kind: KindColor, Aliases: []string{"linkColor"}},
				{Name: "fontFamily", Label: "Font", Kind: KindSelect, Options: []string{"system", "serif", "mono"}, Default: "system"},
				{Name: "contentWidth", Label: "Content width (px)", Kind: KindNumber, Default: 1100, Min: 480, Max: 1920},
			},
		},
	}
}
