package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Date layouts for the credential scope. The TC3 verifier expects ISO.
const (
	DateLayoutISO     = "2006-01-02"
	DateLayoutCompact = "20060102"
)

// Tencent Cloud TC3 constants.
const (
	TC3Algorithm  = "TC3-HMAC-SHA256"
	TC3KeyPrefix  = "TC3"
	TC3Terminator = "tc3_request"
)

const signedHeaders = "content-type;host"

// Header names set by Build.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderHost          = "Host"
	HeaderAction        = "X-TC-Action"
	HeaderTimestamp     = "X-TC-Timestamp"
	HeaderVersion       = "X-TC-Version"
	HeaderRegion        = "X-TC-Region"
	HeaderToken         = "X-TC-Token"
)

// Signer computes TC3-style authorization headers. A Signer holds no
// secrets and is safe for concurrent use.
type Signer struct {
	Service    string
	Algorithm  string
	KeyPrefix  string
	Terminator string
	DateLayout string
}

// NewTC3Signer returns a Signer with Tencent Cloud's algorithm constants for
// the given service (e.g. "asr").
func NewTC3Signer(service string) *Signer {
	return &Signer{
		Service:    service,
		Algorithm:  TC3Algorithm,
		KeyPrefix:  TC3KeyPrefix,
		Terminator: TC3Terminator,
		DateLayout: DateLayoutISO,
	}
}

// CanonicalInput is the part of a request covered by the signature.
type CanonicalInput struct {
	Method      string
	Host        string
	Path        string
	Query       url.Values
	ContentType string
	Payload     []byte
}

// SignedRequest is a request with its full header set, ready to send.
type SignedRequest struct {
	Method  string
	Host    string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// HeaderMap flattens Headers for transports that take one value per key.
func (r *SignedRequest) HeaderMap() map[string]string {
	out := make(map[string]string, len(r.Headers))
	for k := range r.Headers {
		out[k] = r.Headers.Get(k)
	}
	return out
}

// Sign returns the Authorization header value for in at the given Unix
// timestamp. The only error is ErrMissingCredential.
func (s *Signer) Sign(cred Credential, in CanonicalInput, timestamp int64) (string, error) {
	if err := cred.Validate(); err != nil {
		return "", err
	}
	date := s.Date(timestamp)
	scope := s.CredentialScope(date)
	sts := s.StringToSign(in, timestamp)

	kDate := hmacSHA256([]byte(s.KeyPrefix+cred.SecretKey), date)
	kService := hmacSHA256(kDate, s.Service)
	kSigning := hmacSHA256(kService, s.Terminator)
	signature := hex.EncodeToString(hmacSHA256(kSigning, sts))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.Algorithm, cred.SecretID, scope, signedHeaders, signature), nil
}

// Build signs in and returns it with every header the API expects.
func (s *Signer) Build(cred Credential, in CanonicalInput, timestamp int64, action, version, region string) (*SignedRequest, error) {
	auth, err := s.Sign(cred, in, timestamp)
	if err != nil {
		return nil, err
	}
	h := make(http.Header)
	h.Set(HeaderAuthorization, auth)
	h.Set(HeaderContentType, in.ContentType)
	h.Set(HeaderHost, in.Host)
	h.Set(HeaderAction, action)
	h.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	h.Set(HeaderVersion, version)
	if region != "" {
		h.Set(HeaderRegion, region)
	}
	if cred.Token != "" {
		h.Set(HeaderToken, cred.Token)
	}
	return &SignedRequest{
		Method:  strings.ToUpper(in.Method),
		Host:    in.Host,
		Path:    canonicalPath(in.Path),
		Query:   in.Query,
		Headers: h,
		Body:    in.Payload,
	}, nil
}

// Date renders the UTC calendar date of timestamp with the configured layout.
func (s *Signer) Date(timestamp int64) string {
	layout := s.DateLayout
	if layout == "" {
		layout = DateLayoutISO
	}
	return time.Unix(timestamp, 0).UTC().Format(layout)
}

// CredentialScope returns "date/service/terminator".
func (s *Signer) CredentialScope(date string) string {
	return date + "/" + s.Service + "/" + s.Terminator
}

// CanonicalRequest builds the canonical request string for in.
func (s *Signer) CanonicalRequest(in CanonicalInput) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(in.Method))
	b.WriteByte('\n')
	b.WriteString(canonicalPath(in.Path))
	b.WriteByte('\n')
	b.WriteString(CanonicalQuery(in.Query))
	b.WriteByte('\n')
	b.WriteString("content-type:" + strings.ToLower(strings.TrimSpace(in.ContentType)) + "\n")
	b.WriteString("host:" + strings.ToLower(strings.TrimSpace(in.Host)) + "\n")
	b.WriteByte('\n')
	b.WriteString(signedHeaders)
	b.WriteByte('\n')
	b.WriteString(sha256Hex(in.Payload))
	return b.String()
}

// StringToSign builds the string signed with the derived key.
func (s *Signer) StringToSign(in CanonicalInput, timestamp int64) string {
	return strings.Join([]string{
		s.Algorithm,
		strconv.FormatInt(timestamp, 10),
		s.CredentialScope(s.Date(timestamp)),
		sha256Hex([]byte(s.CanonicalRequest(in))),
	}, "\n")
}

// CanonicalQuery renders q with keys (and repeated values) sorted and every
// key and value percent-encoded per RFC 3986.
func CanonicalQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		vals := append([]string(nil), q[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			parts = append(parts, escape(k)+"="+escape(v))
		}
	}
	return strings.Join(parts, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func canonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
