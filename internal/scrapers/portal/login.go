package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func decodeToken(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// FetchLoginForm requests the login page and reads the login form off of it.
// A page without a qualifying form is a protocol error, retrying will not help.
func (c *Client) FetchLoginForm(ctx context.Context) (LoginForm, error) {
	ctx, span := tracer.Start(ctx, "client:FetchLoginForm")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.opts.LoginPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		c.tel.ReportBroken(report_client_fetch_login_form, fmt.Errorf("fetch: %w", err))
		return LoginForm{}, networkError("fetch login page", err)
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected status")
		c.tel.ReportWarning(report_client_fetch_login_form, res.Status())
		return LoginForm{}, networkError(fmt.Sprintf("fetch login page: unexpected status %s", res.Status()), nil)
	}

	page, err := parsePage(res)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page")
		c.tel.ReportBroken(report_client_fetch_login_form, err)
		return LoginForm{}, err
	}

	form, ok := findLoginForm(page.Doc, page.Url)
	if !ok {
		span.SetStatus(codes.Error, "no login form")
		c.tel.ReportBroken(
			report_client_fetch_login_form,
			fmt.Errorf("no form with a password input, the login page layout may have changed"),
			page.Url.String(),
		)
		return LoginForm{}, protocolError("no login form", nil)
	}
	if form.UsernameField == "" {
		span.SetStatus(codes.Error, "no username field")
		c.tel.ReportBroken(
			report_client_fetch_login_form,
			fmt.Errorf("login form has no text input"),
			page.Url.String(),
		)
		return LoginForm{}, protocolError("no username field in login form", nil)
	}
	if form.ViewState == "" {
		c.tel.ReportWarning(report_client_fetch_login_form, fmt.Errorf("login form has no view state"))
	}

	c.state = StateFormFetched
	return form, nil
}

// Submit posts the credentials through the form without following redirects,
// the redirect itself is what tells if the login worked.
func (c *Client) Submit(ctx context.Context, form LoginForm, username, password string) (status int, location string, page Page, err error) {
	ctx, span := tracer.Start(ctx, "client:Submit")
	defer span.End()

	if c.dumper != nil {
		c.dumper.Redact(form.PasswordField)
	}

	res, err := c.noRedirect.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode(username, password)).
		Post(form.Action.String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to post login")
		c.tel.ReportBroken(report_client_submit, fmt.Errorf("post: %w", err))
		return 0, "", Page{}, networkError("submit login", err)
	}
	c.state = StateSubmitted
	span.SetAttributes(attribute.Int("status", res.StatusCode()))

	page, err = parsePage(res)
	if err != nil {
		c.tel.ReportWarning(report_client_submit, err)
	}
	return res.StatusCode(), res.Header().Get("Location"), page, nil
}

// Login runs the whole handshake, on success the session is marked authenticated.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	err := c.login(ctx, username, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		c.state = StateLoggedOut
		c.session.setAuthenticated(false)
		return err
	}

	c.state = StateAuthenticated
	c.session.setAuthenticated(true)
	return nil
}

func (c *Client) login(ctx context.Context, username, password string) error {
	form, err := c.FetchLoginForm(ctx)
	if err != nil {
		return err
	}

	status, location, page, err := c.Submit(ctx, form, username, password)
	if err != nil {
		return err
	}

	switch {
	case status >= 300 && status < 400 && location != "":
		token := extractToken(location)
		if token != "" {
			c.session.setToken(token)
		}

		target, err := url.Parse(location)
		if err != nil {
			c.tel.ReportWarning(report_client_login, fmt.Errorf("parse redirect location: %w", err), location)
			break
		}
		if page.Url != nil {
			target = page.Url.ResolveReference(target)
		}

		dest, err := c.FetchDocument(ctx, target.String())
		if err != nil {
			c.tel.ReportWarning(report_client_login, fmt.Errorf("follow redirect: %w", err), target.String())
			break
		}
		check, ok := confirmLogin(dest.Doc)
		if ok {
			c.tel.ReportDebug("login confirmed after redirect", check)
			return nil
		}
		if msg, found := errorMessage(dest.Doc); found && HasPasswordField(dest.Doc) {
			return authError(messageOr(msg, "invalid credentials"))
		}

	case status == http.StatusOK && page.Doc != nil:
		if msg, found := errorMessage(page.Doc); found {
			return authError(messageOr(msg, "login rejected"))
		}
		if HasPasswordField(page.Doc) {
			return authError("invalid credentials")
		}
		check, ok := confirmLogin(page.Doc)
		if ok {
			c.tel.ReportDebug("login confirmed in response", check)
			return nil
		}

	default:
		c.tel.ReportWarning(report_client_login, fmt.Errorf("unexpected login response status %d", status))
	}

	// neither response told us anything definite, see if the main page lets us in
	main, err := c.FetchMain(ctx)
	if err != nil {
		c.tel.ReportWarning(report_client_login, fmt.Errorf("fetch main page: %w", err))
		return authError("login failed, reason unknown")
	}
	check, ok := confirmLogin(main.Doc)
	if ok {
		c.tel.ReportDebug("login confirmed on main page", check)
		return nil
	}
	return authError("login failed, reason unknown")
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// Logout forgets the session locally, it is idempotent.
func (c *Client) Logout() {
	c.session.Clear()
	c.state = StateLoggedOut
}
