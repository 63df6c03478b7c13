package forms

import (
	"fmt"
	"html/template"
	"strings"
)

// BoundField is a form field ready to be rendered.
type BoundField struct {
	Name     string
	Label    string
	Required bool
	Widget   template.HTML
	Errors   []string
}

// widget renders an input for a field.
type widget func(name, value string, attrs map[string]string) template.HTML

// attribute order is fixed so output is stable.
var attrOrder = []string{"type", "name", "id", "data-stripe", "value", "maxlength", "required"}

func renderAttrs(attrs map[string]string) string {
	var b strings.Builder
	for _, key := range attrOrder {
		v, ok := attrs[key]
		if !ok {
			continue
		}
		if key == "required" {
			b.WriteString(" required")
			continue
		}
		fmt.Fprintf(&b, ` %s="%s"`, key, template.HTMLEscapeString(v))
	}
	return b.String()
}

func textInput(name, value string, attrs map[string]string) template.HTML {
	attrs["type"] = "text"
	attrs["name"] = name
	if value != "" {
		attrs["value"] = value
	}
	return template.HTML("<input" + renderAttrs(attrs) + ">")
}

// noWidget keeps a field out of the page. Stripe.js adds the input itself.
func noWidget(name, _ string, _ map[string]string) template.HTML {
	return template.HTML("<!-- no widget: " + template.HTMLEscapeString(name) + " -->")
}

func countrySelect(name, value string, attrs map[string]string) template.HTML {
	attrs["name"] = name
	var b strings.Builder
	b.WriteString("<select" + renderAttrs(attrs) + ">")
	b.WriteString(`<option value="">---------</option>`)
	for _, c := range Countries() {
		selected := ""
		if c.Code == value {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
			c.Code, selected, template.HTMLEscapeString(c.Name))
	}
	b.WriteString("</select>")
	return template.HTML(b.String())
}

// striped marks a widget for Stripe.js with data-stripe. A secure striped
// widget also gets an empty name so the browser never posts its value.
func striped(w widget, secure bool) widget {
	return func(name, value string, attrs map[string]string) template.HTML {
		attrs["data-stripe"] = name
		if secure {
			name = ""
			value = ""
		}
		return w(name, value, attrs)
	}
}

// label derives a human label from a field name: address_line1 becomes
// "Address line1".
func label(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
