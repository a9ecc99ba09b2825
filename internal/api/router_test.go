package api_test

import (
	"io"
	"net/http"
	"testing"

	"autohaven/internal/domain/model"
	"autohaven/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingEnvelope struct {
	Success bool          `json:"success"`
	Data    model.Listing `json:"data"`
}

type pageEnvelope struct {
	Success    bool `json:"success"`
	Count      int  `json:"count"`
	Pagination struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	} `json:"pagination"`
	Data []model.Listing `json:"data"`
}

type authEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		User  map[string]interface{} `json:"user"`
		Token string                 `json:"token"`
	} `json:"data"`
}

func camryBody() map[string]interface{} {
	return map[string]interface{}{
		"make": "Toyota", "model": "Camry", "year": 2022, "price": 25999, "mileage": 15000,
		"fuelType": "Gasoline", "transmission": "Automatic", "imageUrl": "http://x/y.jpg",
		"description": "clean", "features": []string{},
	}
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)
	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestCars_AdminCRUD(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, adminToken := testutil.NewUserBuilder().Admin().Build(t, ts)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/cars"), adminToken, camryBody())
	var created listingEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusCreated, &created)
	assert.True(t, created.Success)
	require.NotEmpty(t, created.Data.ID)
	assert.True(t, created.Data.IsAvailable)
	assert.Equal(t, "2022-toyota-camry", created.Data.Slug)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars/"+created.Data.ID), "", nil)
	var got listingEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &got)
	assert.Equal(t, created.Data.ID, got.Data.ID)
	assert.Equal(t, 25999.0, got.Data.Price)

	resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/cars/"+created.Data.ID), adminToken,
		map[string]interface{}{"price": 21000, "isAvailable": false})
	var updated listingEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &updated)
	assert.Equal(t, 21000.0, updated.Data.Price)
	assert.False(t, updated.Data.IsAvailable)
	assert.Equal(t, "Camry", updated.Data.Model)

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/cars/"+created.Data.ID), adminToken, nil)
	var deleted struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &deleted)
	assert.True(t, deleted.Success)
	assert.Empty(t, deleted.Data)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars/"+created.Data.ID), "", nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "not found")

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/cars/"+created.Data.ID), adminToken, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "not found")
}

func TestCars_MutationAuthorization(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, userToken := testutil.NewUserBuilder().Build(t, ts)
	car := testutil.SeedListing(t, ts, testutil.ListingRequest("Honda", "Civic", 2019, 18500))

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		msg    string
	}{
		{"create without token", http.MethodPost, "/cars", "", http.StatusUnauthorized, "no token"},
		{"create with bad token", http.MethodPost, "/cars", "garbage", http.StatusUnauthorized, "invalid token"},
		{"create as user", http.MethodPost, "/cars", userToken, http.StatusForbidden, "admin"},
		{"update as user", http.MethodPut, "/cars/" + car.ID, userToken, http.StatusForbidden, "admin"},
		{"delete without token", http.MethodDelete, "/cars/" + car.ID, "", http.StatusUnauthorized, "no token"},
		{"delete as user", http.MethodDelete, "/cars/" + car.ID, userToken, http.StatusForbidden, "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, tt.method, ts.APIURL(tt.path), tt.token, camryBody())
			testutil.AssertErrorResponse(t, resp, tt.status, tt.msg)
		})
	}

	got, err := ts.Repos.Listings.FindByID(t.Context(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, 18500.0, got.Price)
}

func TestCars_PublicRoutesIgnoreBadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedListing(t, ts, testutil.ListingRequest("Honda", "Civic", 2019, 18500))

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars"), "expired-or-garbage", nil)
	var page pageEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &page)
	assert.Equal(t, 1, page.Count)
}

func TestCars_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, adminToken := testutil.NewUserBuilder().Admin().Build(t, ts)

	body := camryBody()
	delete(body, "make")
	body["price"] = -1
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/cars"), adminToken, body)

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	testutil.AssertJSONResponse(t, resp, http.StatusBadRequest, &envelope)
	assert.False(t, envelope.Success)
	fields := []string{}
	for _, d := range envelope.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"make", "price"}, fields)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/cars"), adminToken, "not an object")
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid request payload")
}

func TestCars_ListPaginationAndFilters(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedListing(t, ts, testutil.ListingRequest("Toyota", "Camry", 2022, 25999))
	testutil.SeedListing(t, ts, testutil.ListingRequest("Honda", "Civic", 2019, 18500))
	testutil.SeedListing(t, ts, testutil.ListingRequest("BMW", "X5", 2023, 61000))
	testutil.SeedListing(t, ts, testutil.ListingRequest("Toyota", "Corolla", 2015, 9900))

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars?page=2&limit=3"), "", nil)
	var page pageEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &page)
	assert.True(t, page.Success)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 3, page.Pagination.Limit)
	assert.Equal(t, 4, page.Pagination.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Corolla", page.Data[0].Model)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars?page=abc&limit=-4"), "", nil)
	page = pageEnvelope{}
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &page)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, 4, page.Count)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars?make=toyo&priceMax=26000"), "", nil)
	page = pageEnvelope{}
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &page)
	assert.Equal(t, 2, page.Pagination.Total)
	models := []string{}
	for _, l := range page.Data {
		models = append(models, l.Model)
	}
	assert.Equal(t, []string{"Camry", "Corolla"}, models)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars?priceMin=lots"), "", nil)
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "priceMin")
}

func TestUsers_RegisterLoginProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)

	creds := map[string]string{"name": "Ann", "email": "a@x.com", "password": "secret1"}
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/register"), "", creds)
	var reg authEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusCreated, &reg)
	assert.NotEmpty(t, reg.Data.Token)
	assert.Equal(t, "a@x.com", reg.Data.User["email"])
	assert.NotContains(t, reg.Data.User, "hashedPassword")
	assert.NotContains(t, reg.Data.User, "password")

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/register"), "", creds)
	testutil.AssertErrorResponse(t, resp, http.StatusConflict, "already exists")

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/login"), "",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	var login authEnvelope
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &login)
	require.NotEmpty(t, login.Data.Token)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/login"), "",
		map[string]string{"email": "a@x.com", "password": "nope-nope"})
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "invalid email or password")

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/profile"), login.Data.Token, nil)
	var profile struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &profile)
	assert.Equal(t, "Ann", profile.Data["name"])
	assert.Equal(t, false, profile.Data["isAdmin"])
	assert.NotContains(t, profile.Data, "hashedPassword")

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/profile"), "", nil)
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "no token")

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/profile"), "tampered."+login.Data.Token, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "invalid token")
}

func TestContact_SubmitAndAdminList(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, adminToken := testutil.NewUserBuilder().Admin().Build(t, ts)
	_, userToken := testutil.NewUserBuilder().Build(t, ts)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/contact"), "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "phone": "555-0100", "message": "Test drive Saturday?",
	})
	testutil.AssertJSONResponse(t, resp, http.StatusCreated, nil)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/contact"), "", map[string]string{"name": "Ada"})
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "validation failed")

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contact"), userToken, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "admin")

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contact"), adminToken, nil)
	var page struct {
		Count      int `json:"count"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
		Data []model.ContactMessage `json:"data"`
	}
	testutil.AssertJSONResponse(t, resp, http.StatusOK, &page)
	assert.Equal(t, 1, page.Pagination.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Test drive Saturday?", page.Data[0].Message)
}

func TestPaging_PageBeyondIntRangeIsEmpty(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, adminToken := testutil.NewUserBuilder().Admin().Build(t, ts)
	testutil.SeedListing(t, ts, testutil.ListingRequest("Toyota", "Camry", 2022, 25999))
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/contact"), "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "message": "Still available?",
	})
	testutil.AssertJSONResponse(t, resp, http.StatusCreated, nil)

	for _, path := range []string{"/cars", "/contact"} {
		t.Run(path, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL(path+"?page=1000000000000000000&limit=10"), adminToken, nil)
			var page pageEnvelope
			testutil.AssertJSONResponse(t, resp, http.StatusOK, &page)
			assert.Equal(t, 0, page.Count)
			assert.Empty(t, page.Data)
			assert.Equal(t, 1, page.Pagination.Total)
			assert.Equal(t, 1000000000000000000, page.Pagination.Page)
		})
	}
}

func TestCars_NonFinitePriceIsRejected(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedListing(t, ts, testutil.ListingRequest("Toyota", "Camry", 2022, 25999))

	for _, q := range []string{"priceMin=NaN", "priceMax=NaN", "priceMin=NaN&priceMax=NaN", "priceMax=Inf"} {
		t.Run(q, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/cars?"+q), "", nil)
			testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "price")
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := testutil.NewTestServer(t)
	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/trucks"), "", nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Route not found")
}
