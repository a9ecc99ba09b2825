package testutil

import (
	"context"
	"fmt"
	"testing"

	"autohaven/internal/app/service"
	"autohaven/internal/domain/model"

	"github.com/google/uuid"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
	admin    bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     "Test User " + suffix,
		email:    fmt.Sprintf("user_%s@autohaven.test", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) Admin() *UserBuilder {
	b.admin = true
	return b
}

// Build registers the user through the auth service and returns it with a
// bearer token.
func (b *UserBuilder) Build(t *testing.T, ts *TestServer) (*model.User, string) {
	t.Helper()
	ctx := context.Background()

	if b.admin {
		if _, err := ts.Services.Auth.EnsureAdmin(ctx, b.name, b.email, b.password); err != nil {
			t.Fatalf("failed to create admin: %v", err)
		}
		resp, err := ts.Services.Auth.Login(ctx, service.LoginRequest{Email: b.email, Password: b.password})
		if err != nil {
			t.Fatalf("failed to log admin in: %v", err)
		}
		return resp.User, resp.Token
	}

	resp, err := ts.Services.Auth.Register(ctx, service.RegisterRequest{Name: b.name, Email: b.email, Password: b.password})
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return resp.User, resp.Token
}

// Password returns the raw password the builder uses.
func (b *UserBuilder) Password() string { return b.password }

// ListingRequest returns a valid create payload for make/model/year/price.
func ListingRequest(carMake, carModel string, year int, price float64) service.CreateListingRequest {
	mileage := 15000.0
	return service.CreateListingRequest{
		Make:         carMake,
		Model:        carModel,
		Year:         &year,
		Price:        &price,
		Mileage:      &mileage,
		FuelType:     "Gasoline",
		Transmission: "Automatic",
		ImageURL:     "http://x/y.jpg",
		Description:  "clean",
		Features:     []string{},
	}
}

// SeedListing stores a listing directly through the catalog as an admin.
func SeedListing(t *testing.T, ts *TestServer, req service.CreateListingRequest) *model.Listing {
	t.Helper()
	admin := model.IdentityFor(&model.User{ID: "seed-admin", IsAdmin: true})
	l, err := ts.Services.Catalog.Create(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}
	return l
}
