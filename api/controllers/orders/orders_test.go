package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shipdesk-backend/api/middleware"
	internalorders "github.com/angelmondragon/shipdesk-backend/internal/orders"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/pagination"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

type stubService struct {
	create func(ctx context.Context, actor visibility.Actor, in internalorders.CreateOrderInput) (*internalorders.CreateResult, error)
	delete func(ctx context.Context, actor visibility.Actor, ids []int64) (*internalorders.DeleteResult, error)
	list   func(ctx context.Context, actor visibility.Actor, params pagination.Params) (*internalorders.OrderList, error)
	detail func(ctx context.Context, actor visibility.Actor, orderID int64) (*internalorders.OrderDetail, error)
}

func (s *stubService) Create(ctx context.Context, actor visibility.Actor, in internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
	return s.create(ctx, actor, in)
}

func (s *stubService) Delete(ctx context.Context, actor visibility.Actor, ids []int64) (*internalorders.DeleteResult, error) {
	return s.delete(ctx, actor, ids)
}

func (s *stubService) List(ctx context.Context, actor visibility.Actor, params pagination.Params) (*internalorders.OrderList, error) {
	return s.list(ctx, actor, params)
}

func (s *stubService) Detail(ctx context.Context, actor visibility.Actor, orderID int64) (*internalorders.OrderDetail, error) {
	return s.detail(ctx, actor, orderID)
}

var testActor = visibility.Actor{UserID: 5, ClientID: 9, Role: enums.UserRoleClientAdmin}

func authed(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), testActor))
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

const createBody = `{"name":"Asha","mobile":"9876543210","address":"12 MG Road","city":"Bengaluru","state":"KA","country":"India","pincode":"560001","courierService":"Delhivery","pickupLocation":"Main Warehouse","packageValue":"499","weight":"1.5","totalItems":1}`

func TestCreateReturns201WithActor(t *testing.T) {
	tracking := "WB123"
	svc := &stubService{create: func(_ context.Context, actor visibility.Actor, in internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
		require.Equal(t, testActor, actor)
		require.Equal(t, "Asha", in.Name)
		require.Equal(t, "Delhivery", in.CourierService)
		return &internalorders.CreateResult{Success: true, Order: internalorders.CreatedOrder{
			ID:            1,
			TrackingID:    &tracking,
			CourierStatus: enums.TrackingStatusManifested,
		}}, nil
	}}

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(createBody)))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var payload struct {
		Data internalorders.CreateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.True(t, payload.Data.Success)
	require.Equal(t, "WB123", *payload.Data.Order.TrackingID)
}

func TestCreateMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   pkgerrors.Code
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "name is required").WithDetails(map[string]any{"reason": pkgerrors.ReasonMissingField, "field": "name"}), http.StatusBadRequest, pkgerrors.CodeValidation},
		{"credits", pkgerrors.New(pkgerrors.CodeInsufficientCredits, "insufficient credits").WithDetails(map[string]any{"reason": pkgerrors.ReasonInsufficientCredits}), http.StatusPaymentRequired, pkgerrors.CodeInsufficientCredits},
		{"courier", pkgerrors.New(pkgerrors.CodeCourierBooking, "courier booking failed").WithDetails(map[string]any{"reason": pkgerrors.ReasonCourierBooking}), http.StatusBadGateway, pkgerrors.CodeCourierBooking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{create: func(context.Context, visibility.Actor, internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
				return nil, tt.err
			}}
			req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(createBody)))
			resp := httptest.NewRecorder()
			Create(svc, nil).ServeHTTP(resp, req)

			require.Equal(t, tt.status, resp.Code)
			body := decodeError(t, resp)
			require.Equal(t, string(tt.code), body.Error.Code)
			require.NotEmpty(t, body.Error.Details["reason"])
		})
	}
}

func TestCreateRejectsInvalidDraftBeforeService(t *testing.T) {
	svc := &stubService{create: func(context.Context, visibility.Actor, internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
		t.Fatal("service must not run")
		return nil, nil
	}}
	body := strings.Replace(createBody, `"mobile":"9876543210"`, `"mobile":"12345"`, 1)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	errBody := decodeError(t, resp)
	require.Equal(t, pkgerrors.ReasonInvalidMobile, errBody.Error.Details["reason"])
	require.Equal(t, "mobile", errBody.Error.Details["field"])
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubService{create: func(context.Context, visibility.Actor, internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
		t.Fatal("service must not run")
		return nil, nil
	}}
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"bogus":true}`)))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateRequiresActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Create(&stubService{}, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBulkDeleteParsesMixedIDs(t *testing.T) {
	var got []int64
	svc := &stubService{delete: func(_ context.Context, _ visibility.Actor, ids []int64) (*internalorders.DeleteResult, error) {
		got = ids
		return &internalorders.DeleteResult{Success: true, DeletedCount: len(ids)}, nil
	}}
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders/bulk-delete", strings.NewReader(`{"orderIds":[3,"4",3]}`)))
	resp := httptest.NewRecorder()
	BulkDelete(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []int64{3, 4}, got)
}

func TestBulkDeleteRejectsBadBodies(t *testing.T) {
	svc := &stubService{delete: func(context.Context, visibility.Actor, []int64) (*internalorders.DeleteResult, error) {
		t.Fatal("service must not run")
		return nil, nil
	}}
	for _, body := range []string{`{}`, `{"orderIds":[]}`, `{"orderIds":["abc"]}`, `{"orderIds":[-1]}`} {
		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders/bulk-delete", strings.NewReader(body)))
		resp := httptest.NewRecorder()
		BulkDelete(svc, nil).ServeHTTP(resp, req)
		require.Equal(t, http.StatusBadRequest, resp.Code, body)
	}
}

func TestBulkDeleteSurfacesForbidden(t *testing.T) {
	svc := &stubService{delete: func(context.Context, visibility.Actor, []int64) (*internalorders.DeleteResult, error) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "orders outside your visibility")
	}}
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/orders/bulk-delete", strings.NewReader(`{"orderIds":[1]}`)))
	resp := httptest.NewRecorder()
	BulkDelete(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestListPassesPagination(t *testing.T) {
	svc := &stubService{list: func(_ context.Context, _ visibility.Actor, params pagination.Params) (*internalorders.OrderList, error) {
		require.Equal(t, 10, params.Limit)
		require.Equal(t, "abc", params.Cursor)
		return &internalorders.OrderList{NextCursor: "next"}, nil
	}}
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=10&cursor=abc", nil))
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"nextCursor":"next"`)
}

func TestListRejectsOutOfRangeLimit(t *testing.T) {
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=1000", nil))
	resp := httptest.NewRecorder()
	List(&stubService{}, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func detailRequest(id string) *http.Request {
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id, nil))
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestDetail(t *testing.T) {
	svc := &stubService{detail: func(_ context.Context, _ visibility.Actor, orderID int64) (*internalorders.OrderDetail, error) {
		if orderID == 404 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return &internalorders.OrderDetail{ID: orderID}, nil
	}}

	resp := httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, detailRequest("12"))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, detailRequest("404"))
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, detailRequest("abc"))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
