package portal

import (
	"classsync-backend/pkg/htmlutil"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type formField struct {
	Name  string
	Value string
}

// LoginForm is what was read off the login page. Fields are kept in document order since
// the portal rejects submissions whose fields are reordered.
type LoginForm struct {
	Action        *url.URL
	Fields        []formField
	UsernameField string
	PasswordField string
	// ViewState is the value of the hidden state token the server correlates the POST with.
	ViewState   string
	SubmitName  string
	SubmitValue string
}

func inputType(sel *goquery.Selection) string {
	t := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "text")))
	if t == "" {
		return "text"
	}
	return t
}

func isViewState(name string) bool {
	return strings.Contains(strings.ToLower(name), "viewstate")
}

// findLoginForm picks the first form holding a password input. The form's action is resolved
// against pageUrl, which is where the form was served from.
func findLoginForm(doc *goquery.Document, pageUrl *url.URL) (LoginForm, bool) {
	var form *goquery.Selection
	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find("input[type='password'], input[type='PASSWORD']").Length() > 0 {
			form = s
			return false
		}
		return true
	})
	if form == nil {
		return LoginForm{}, false
	}

	result := LoginForm{Action: pageUrl}
	if action, ok := form.Attr("action"); ok && strings.TrimSpace(action) != "" {
		parsed, err := url.Parse(strings.TrimSpace(action))
		if err == nil {
			if pageUrl != nil {
				parsed = pageUrl.ResolveReference(parsed)
			}
			result.Action = parsed
		}
	}

	submitFound := false
	form.Find("input, button").Each(func(_ int, s *goquery.Selection) {
		name, hasName := s.Attr("name")
		tag := goquery.NodeName(s)
		typ := inputType(s)
		if tag == "button" {
			typ = strings.ToLower(s.AttrOr("type", "submit"))
		}

		switch typ {
		case "submit", "image":
			if submitFound || !hasName || name == "" {
				return
			}
			submitFound = true
			result.SubmitName = name
			value, ok := s.Attr("value")
			if !ok && tag == "button" {
				value = htmlutil.Text(s)
			}
			result.SubmitValue = value
			return
		case "button", "reset", "file":
			return
		}
		if !hasName || name == "" {
			return
		}

		switch typ {
		case "password":
			if result.PasswordField == "" {
				result.PasswordField = name
			}
		case "text", "email":
			if result.UsernameField == "" {
				result.UsernameField = name
			}
		case "hidden":
			if isViewState(name) && result.ViewState == "" {
				result.ViewState = s.AttrOr("value", "")
			}
		case "checkbox", "radio":
			if _, checked := s.Attr("checked"); !checked {
				return
			}
		}

		result.Fields = append(result.Fields, formField{
			Name:  name,
			Value: s.AttrOr("value", defaultCheckedValue(typ)),
		})
	})

	return result, true
}

func defaultCheckedValue(typ string) string {
	if typ == "checkbox" || typ == "radio" {
		return "on"
	}
	return ""
}

// Encode builds the urlencoded body in field order, with the credentials filled into
// their fields and the submit pair appended last.
func (f LoginForm) Encode(username, password string) string {
	var body strings.Builder
	write := func(name, value string) {
		if body.Len() > 0 {
			body.WriteByte('&')
		}
		body.WriteString(url.QueryEscape(name))
		body.WriteByte('=')
		body.WriteString(url.QueryEscape(value))
	}

	for _, field := range f.Fields {
		switch field.Name {
		case f.UsernameField:
			write(field.Name, username)
		case f.PasswordField:
			write(field.Name, password)
		default:
			write(field.Name, field.Value)
		}
	}
	if f.SubmitName != "" {
		write(f.SubmitName, f.SubmitValue)
	}
	return body.String()
}
