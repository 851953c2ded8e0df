package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gartstein/bawsala/internal/directory/controller"
	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/gartstein/bawsala/internal/directory/filter"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/gartstein/bawsala/internal/directory/sorting"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// viewRequest is the wire shape of a directory query, shared by HTTP query
// strings and gRPC request structs.
type viewRequest struct {
	Query       string   `json:"q"`
	Tags        []string `json:"tags"`
	Industry    string   `json:"industry"`
	Subindustry string   `json:"subindustry"`
	Sort        string   `json:"sort"`
	Dir         string   `json:"dir"`
	Lang        string   `json:"lang"`
}

// viewRequestFromQuery reads q, tag (repeatable or comma separated),
// industry, subindustry, sort, dir and lang.
func viewRequestFromQuery(values url.Values) viewRequest {
	var tags []string
	for _, v := range values["tag"] {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return viewRequest{
		Query:       values.Get("q"),
		Tags:        tags,
		Industry:    values.Get("industry"),
		Subindustry: values.Get("subindustry"),
		Sort:        values.Get("sort"),
		Dir:         values.Get("dir"),
		Lang:        values.Get("lang"),
	}
}

func (r viewRequest) toState() (controller.ViewState, error) {
	locale, err := models.ParseLocale(r.Lang)
	if err != nil {
		return controller.ViewState{}, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	order, err := sorting.ParseOrder(r.Sort, r.Dir)
	if err != nil {
		return controller.ViewState{}, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	sel := filter.Selection{}.WithTags(r.Tags...)
	if r.Industry != "" {
		sel = sel.SelectIndustry(r.Industry)
	}
	if r.Subindustry != "" {
		if r.Industry == "" {
			return controller.ViewState{}, fmt.Errorf("%w: subindustry requires an industry", e.ErrInvalidInput)
		}
		sel = sel.SelectSubindustry(r.Subindustry)
	}
	return controller.ViewState{
		Query:   r.Query,
		Filters: sel,
		Order:   order,
		Locale:  locale,
	}, nil
}

// searchResponse is the wire shape of a bare search.
type searchResponse struct {
	Active bool     `json:"active"`
	Failed bool     `json:"failed"`
	Error  string   `json:"error,omitempty"`
	IDs    []string `json:"ids"`
}

func toSearchResponse(res models.SearchResultSet) searchResponse {
	out := searchResponse{Active: res.Active(), Failed: res.Failed(), IDs: res.IDs()}
	if out.IDs == nil {
		out.IDs = []string{}
	}
	if res.Failed() {
		out.Error = res.Err().Error()
	}
	return out
}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into v.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// mapServiceError maps domain errors to gRPC status codes.
func mapServiceError(logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrMalformedQuery):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrIndexNotReady), errors.Is(err, e.ErrCatalogUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
	}
}

// httpStatus maps domain errors to HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrMalformedQuery):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrIndexNotReady), errors.Is(err, e.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
