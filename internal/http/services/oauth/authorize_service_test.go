package oauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
)

func newAuthorizeFixture(t *testing.T) (*tokenFixture, AuthorizeService, string) {
	t.Helper()
	f := newTokenFixture(t)
	f.seedTenantAndUser(t)
	f.store.SeedClient(repository.Client{
		ClientID: "web-app", Name: "Web App",
		RedirectURIs: []string{"https://app.test/cb"}, Active: true,
	})
	svc := NewAuthorizeService(AuthorizeDeps{Store: f.store, Signer: f.signer})

	bearer, _, err := f.signer.Issue(jwtClaims("u1", "t1", ""), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return f, svc, bearer
}

func validAuthorizeRequest() dto.AuthorizeRequest {
	return dto.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     "web-app",
		RedirectURI:  "https://app.test/cb",
		Scope:        "openid profile",
		State:        "xyz",
	}
}

func TestAuthorizeRejectsBeforeRedirect(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)
	ctx := context.Background()

	// No redirect-borne error is allowed for these: the URI is not trusted yet.
	req := validAuthorizeRequest()
	req.ClientID = ""
	if _, err := svc.Authorize(ctx, req, bearer, f.meta); !errors.Is(err, ErrMissingParams) {
		t.Fatalf("missing client_id: expected ErrMissingParams, got %v", err)
	}

	req = validAuthorizeRequest()
	req.ClientID = "ghost"
	if _, err := svc.Authorize(ctx, req, bearer, f.meta); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("unknown client: expected ErrUnknownClient, got %v", err)
	}

	req = validAuthorizeRequest()
	req.RedirectURI = "https://evil.test/cb"
	if _, err := svc.Authorize(ctx, req, bearer, f.meta); !errors.Is(err, ErrInvalidRedirect) {
		t.Fatalf("unregistered redirect: expected ErrInvalidRedirect, got %v", err)
	}
}

func TestAuthorizeRedirectBorneErrors(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)
	ctx := context.Background()

	req := validAuthorizeRequest()
	req.ResponseType = "token"
	res, err := svc.Authorize(ctx, req, bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if res.Type != dto.AuthResultError || res.ErrorCode != "unsupported_response_type" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RedirectURI != req.RedirectURI || res.State != "xyz" {
		t.Fatalf("error must travel back via the registered redirect: %+v", res)
	}

	req = validAuthorizeRequest()
	req.CodeChallenge = "abc"
	req.CodeChallengeMethod = "S512"
	res, err = svc.Authorize(ctx, req, bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if res.Type != dto.AuthResultError || res.ErrorCode != "invalid_request" {
		t.Fatalf("bad challenge method: %+v", res)
	}
}

func TestAuthorizeRequiresFreshBearer(t *testing.T) {
	f, svc, _ := newAuthorizeFixture(t)
	ctx := context.Background()

	expired, _, err := f.signer.Issue(jwtClaims("u1", "t1", ""), -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for _, bearer := range []string{"", "garbage", expired} {
		if _, err := svc.Authorize(ctx, validAuthorizeRequest(), bearer, f.meta); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("bearer %q: expected ErrNotAuthorized, got %v", bearer, err)
		}
	}
}

func TestAuthorizeTenantScopedClientVisibility(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)
	other := "t2"
	f.store.SeedClient(repository.Client{
		ClientID: "t2-only", Name: "Ajena", TenantID: &other,
		RedirectURIs: []string{"https://app.test/cb"}, Active: true,
	})

	req := validAuthorizeRequest()
	req.ClientID = "t2-only"
	if _, err := svc.Authorize(context.Background(), req, bearer, f.meta); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("foreign-tenant client: expected ErrUnknownClient, got %v", err)
	}
}

func TestAuthorizeConsentRoundTrip(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)
	ctx := context.Background()

	// First pass: no prior consent, the caller must be prompted.
	res, err := svc.Authorize(ctx, validAuthorizeRequest(), bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if res.Type != dto.AuthResultConsentNeeded || res.Consent == nil {
		t.Fatalf("expected consent prompt, got %+v", res)
	}
	if res.Consent.ClientName != "Web App" || len(res.Consent.Scopes) != 2 {
		t.Fatalf("unexpected prompt: %+v", res.Consent)
	}

	// Approval issues the code and records consent.
	req := validAuthorizeRequest()
	req.Approve = "true"
	res, err = svc.Authorize(ctx, req, bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize approve: %v", err)
	}
	if res.Type != dto.AuthResultSuccess || res.Code == "" || res.State != "xyz" {
		t.Fatalf("expected a code, got %+v", res)
	}

	// Next pass skips the prompt: consent is fresh and covers the scopes.
	res, err = svc.Authorize(ctx, validAuthorizeRequest(), bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize silent: %v", err)
	}
	if res.Type != dto.AuthResultSuccess || res.Code == "" {
		t.Fatalf("expected silent re-authorization, got %+v", res)
	}

	// A broader scope request prompts again.
	req = validAuthorizeRequest()
	req.Scope = "openid profile email"
	res, err = svc.Authorize(ctx, req, bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize broader: %v", err)
	}
	if res.Type != dto.AuthResultConsentNeeded {
		t.Fatalf("broader scopes must re-prompt, got %+v", res)
	}
}

func TestAuthorizeDenialRedirects(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)

	req := validAuthorizeRequest()
	req.Approve = "false"
	res, err := svc.Authorize(context.Background(), req, bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if res.Type != dto.AuthResultError || res.ErrorCode != "access_denied" {
		t.Fatalf("expected access_denied, got %+v", res)
	}
}

func TestAuthorizeRejectsMalformedApprove(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)
	ctx := context.Background()

	for _, v := range []string{"no", "0", "yes", "TRUE"} {
		req := validAuthorizeRequest()
		req.Approve = v
		res, err := svc.Authorize(ctx, req, bearer, f.meta)
		if err != nil {
			t.Fatalf("approve=%q: %v", v, err)
		}
		if res.Type != dto.AuthResultError || res.ErrorCode != "invalid_request" {
			t.Fatalf("approve=%q must not count as a decision, got %+v", v, res)
		}
		// No consent is recorded and no code is issued for a garbage value.
		if _, err := f.store.Consents().Get(ctx, "t1", "u1", "web-app"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("approve=%q recorded consent: %v", v, err)
		}
	}
}

// Full happy path: authorize with PKCE, then exchange the code at the token
// endpoint service.
func TestAuthorizeCodeExchangeEndToEnd(t *testing.T) {
	f, svc, bearer := newAuthorizeFixture(t)
	ctx := context.Background()

	verifier := "0123456789abcdef0123456789abcdef0123456789abcdef"
	req := validAuthorizeRequest()
	req.Approve = "true"
	req.CodeChallenge = s256(verifier)
	req.CodeChallengeMethod = repository.PKCEMethodS256

	res, err := svc.Authorize(ctx, req, bearer, f.meta)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if res.Type != dto.AuthResultSuccess {
		t.Fatalf("expected a code, got %+v", res)
	}

	out, err := f.svc.Token(ctx, dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "web-app",
		RedirectURI:  "https://app.test/cb",
		Code:         res.Code,
		CodeVerifier: verifier,
	}, f.meta)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	claims, err := f.signer.Validate(out.Tokens.AccessToken, true)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Subject != "u1" || claims.TenantID != "t1" || claims.Scope != "openid profile" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
