package openapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cubahno/oasdocs/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// Operation is a single documented method of a path.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  Parameters
	RequestBody *RequestBody
	Responses   []*Response
}

// Parameter is a struct that represents an OpenAPI parameter.
type Parameter struct {
	Name        string
	In          string
	Description string
	Required    bool
	Deprecated  bool
	Schema      *schema.Schema
}

// Parameters is a slice of Parameter.
type Parameters []*Parameter

// RequestBody is the request payload of the preferred content type.
type RequestBody struct {
	Description string
	Required    bool
	ContentType string
	Schema      *schema.Schema
}

// Response is the payload of a single status code.
// Schema is nil for responses without content.
type Response struct {
	Code        string
	Description string
	ContentType string
	Schema      *schema.Schema
}

const (
	ParameterInPath   = "path"
	ParameterInQuery  = "query"
	ParameterInHeader = "header"
	ParameterInCookie = "cookie"
)

// methods in the order they are listed on a page
var methodsOrder = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

var contentTypesOrder = []string{
	"application/json",
	"multipart/form-data",
	"application/x-www-form-urlencoded",
	"text/plain",
}

// PickContentType returns the preferred media type of the content:
// a well-known one first, then any JSON flavour, then the first in alphabetical order.
func PickContentType(content openapi3.Content) string {
	if len(content) == 0 {
		return ""
	}

	for _, contentType := range contentTypesOrder {
		if _, ok := content[contentType]; ok {
			return contentType
		}
	}

	keys := make([]string, 0, len(content))
	for contentType := range content {
		keys = append(keys, contentType)
	}
	sort.Strings(keys)

	for _, contentType := range keys {
		if strings.HasSuffix(contentType, "+json") {
			return contentType
		}
	}
	return keys[0]
}

// TransformHTTPCode transforms a response code of an OpenAPI document to a sortable number.
// Ranges like 2XX map to their lowest code, default goes after everything else.
func TransformHTTPCode(httpCode string) int {
	httpCode = strings.ToLower(httpCode)
	httpCode = strings.ReplaceAll(httpCode, "x", "0")

	if httpCode == "default" || httpCode == "*" {
		return 1000
	}

	codeInt, err := strconv.Atoi(httpCode)
	if err != nil {
		return 999
	}

	return codeInt
}

// SortStatusCodes returns the codes in ascending order with default last.
func SortStatusCodes(codes []string) []string {
	res := append([]string(nil), codes...)
	sort.SliceStable(res, func(i, j int) bool {
		a, b := TransformHTTPCode(res[i]), TransformHTTPCode(res[j])
		if a != b {
			return a < b
		}
		return res[i] < res[j]
	})
	return res
}

// OperationID builds an identifier for operations declared without operationId,
// e.g. GET /pets/{id} becomes get-pets-id.
func OperationID(method, path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(append([]string{strings.ToLower(method)}, parts...), "-")
}
