// client.go contains the http plumbing shared by login and page fetches, it knows nothing
// about what the pages contain.

package portal

import (
	"bytes"
	"classsync-backend/internal/components/assert"
	"classsync-backend/internal/components/telemetry"
	"classsync-backend/pkg/restyutil"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("classsync/scrapers/portal")

const (
	report_client_fetch_document   = "client.fetch-document"
	report_client_fetch_login_form = "client.fetch-login-form"
	report_client_submit           = "client.submit"
	report_client_login            = "client.login"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimeout   = time.Second * 30
)

type Options struct {
	BaseUrl string
	// LoginPath is the page serving the login form, defaults to /login.xhtml
	LoginPath string
	// MainPath is the landing page after login which also carries the schedule,
	// defaults to /dashboard.xhtml
	MainPath  string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond paces requests, zero disables pacing.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with cloudflare-bp-go.
	CloudflareBypass bool
	// DumpDir, when set, receives a file per request/response exchange with passwords
	// and cookies redacted.
	DumpDir string
}

type State int

const (
	StateLoggedOut State = iota
	StateFormFetched
	StateSubmitted
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateFormFetched:
		return "form_fetched"
	case StateSubmitted:
		return "submitted"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "logged_out"
	}
}

// Client is the authenticating client for one portal account. Requests are issued strictly
// sequentially, callers must not share one Client across concurrent operations.
type Client struct {
	BaseUrl *url.URL
	// Http follows redirects.
	Http *resty.Client
	// noRedirect hands 3xx responses back as-is, the login POST is read through it.
	noRedirect *resty.Client

	opts    Options
	session *Session
	state   State
	tel     telemetry.API
	dumper  *restyutil.Dumper
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseUrl)

	tel = telemetry.NewScopedAPI("portal", tel)

	if opts.LoginPath == "" {
		opts.LoginPath = "/login.xhtml"
	}
	if opts.MainPath == "" {
		opts.MainPath = "/dashboard.xhtml"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(limit, 2)

	session := NewSession()

	var dumper *restyutil.Dumper
	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		d := restyutil.NewDumper(output)
		dumper = &d
	}

	newHttp := func(policy resty.RedirectPolicy) *resty.Client {
		httpClient := resty.New()
		httpClient.SetBaseURL(opts.BaseUrl)
		httpClient.SetCookieJar(session)
		if opts.CloudflareBypass {
			httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
		}
		httpClient.SetHeader("user-agent", opts.UserAgent)
		httpClient.SetRedirectPolicy(policy)
		httpClient.SetTimeout(opts.Timeout)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
		telemetry.InstrumentResty(httpClient, tel, "classsync/scrapers/portal/http")
		if dumper != nil {
			dumper.Attach(httpClient)
		}
		return httpClient
	}

	c := &Client{
		BaseUrl: baseUrl,
		Http:    newHttp(resty.DomainCheckRedirectPolicy(baseUrl.Hostname())),
		noRedirect: newHttp(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})),
		opts:    opts,
		session: session,
		tel:     tel,
		dumper:  dumper,
	}
	return c, nil
}

// Session exposes the session state, it is owned by the client.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) State() State {
	return c.state
}

func (c *Client) Authenticated() bool {
	return c.state == StateAuthenticated && c.session.Authenticated()
}

// Page is a fetched and parsed html document along with the url it ended up at.
type Page struct {
	Url    *url.URL
	Status int
	Doc    *goquery.Document
}

func finalUrl(res *resty.Response) *url.URL {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL
	}
	parsed, err := url.Parse(res.Request.URL)
	if err != nil {
		return nil
	}
	return parsed
}

func parsePage(res *resty.Response) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return Page{}, protocolError("parse html", err)
	}
	return Page{
		Url:    finalUrl(res),
		Status: res.StatusCode(),
		Doc:    doc,
	}, nil
}

// FetchDocument GETs an endpoint (absolute or relative to the base url) with the session
// cookies, following redirects. Anything but a 200 is a network error.
func (c *Client) FetchDocument(ctx context.Context, endpoint string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:FetchDocument")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch")
		c.tel.ReportBroken(report_client_fetch_document, fmt.Errorf("fetch: %w", err), endpoint)
		return Page{}, networkError(fmt.Sprintf("GET %s", endpoint), err)
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected status")
		c.tel.ReportWarning(report_client_fetch_document, res.Status(), endpoint)
		return Page{}, networkError(fmt.Sprintf("GET %s: unexpected status %s", endpoint, res.Status()), nil)
	}

	page, err := parsePage(res)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		c.tel.ReportBroken(report_client_fetch_document, err, endpoint)
		return Page{}, err
	}
	return page, nil
}

// FetchMain fetches the landing page.
func (c *Client) FetchMain(ctx context.Context) (Page, error) {
	return c.FetchDocument(ctx, c.opts.MainPath)
}
