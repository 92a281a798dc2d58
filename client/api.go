package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type SignupResult struct {
	User                 User `json:"user"`
	VerificationRequired bool `json:"verification_required"`
}

func (c *Client) Signup(ctx context.Context, email, password string, accountType Role) (*SignupResult, error) {
	email = strings.TrimSpace(email)
	if err := checkForm(signupForm{Email: email, Password: password, AccountType: accountType}); err != nil {
		return nil, err
	}

	var out SignupResult
	err := c.do(ctx, http.MethodPost, "/signup", nil, map[string]string{
		"email":        email,
		"password":     password,
		"account_type": string(accountType),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email, otp string) error {
	email, otp = strings.TrimSpace(email), strings.TrimSpace(otp)
	if err := checkForm(verifyForm{Email: email, OTP: otp}); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/verify-email", nil, map[string]string{"email": email, "otp": otp}, nil)
}

func (c *Client) ResendCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkForm(verifyForm{Email: email, OTP: "0"}); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/verify-email/resend", nil, map[string]string{"email": email}, nil)
}

// Login validates the credentials locally, then stores the returned session in the Manager.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := checkForm(credentialsForm{Email: email, Password: password}); err != nil {
		return nil, err
	}

	var s Session
	if err := c.do(ctx, http.MethodPost, "/login", nil, map[string]string{"email": email, "password": password}, &s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	if err := c.session.Set(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout revokes the token on the server and always clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	var serverErr error
	if c.session.Token() != "" {
		serverErr = c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
		if errors.Is(serverErr, ErrUnauthorized) {
			serverErr = nil
		}
	}
	if err := c.session.Clear(); err != nil {
		return err
	}
	return serverErr
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListForRent(ctx context.Context, opts ListOptions) ([]Property, error) {
	return c.listProperties(ctx, "/properties/for-rent", opts)
}

func (c *Client) ListForSale(ctx context.Context, opts ListOptions) ([]Property, error) {
	return c.listProperties(ctx, "/properties/for-sale", opts)
}

func (c *Client) listProperties(ctx context.Context, path string, opts ListOptions) ([]Property, error) {
	q := url.Values{}
	if opts.Location != "" {
		q.Set("location", opts.Location)
	}
	setInt := func(k string, v int64) {
		if v > 0 {
			q.Set(k, strconv.FormatInt(v, 10))
		}
	}
	setInt("min_price", opts.MinPrice)
	setInt("max_price", opts.MaxPrice)
	setInt("bedrooms", int64(opts.Bedrooms))
	setInt("limit", int64(opts.Limit))
	setInt("offset", int64(opts.Offset))

	props := []Property{}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &props); err != nil {
		return nil, err
	}
	return nonNil(props), nil
}

// GetProperty fetches a listing. listingType may be "rent", "sale" or "" for either.
func (c *Client) GetProperty(ctx context.Context, id int64, listingType string) (*Property, error) {
	path := "/properties/" + strconv.FormatInt(id, 10)
	switch listingType {
	case "rent":
		path = "/properties/for-rent/" + strconv.FormatInt(id, 10)
	case "sale":
		path = "/properties/for-sale/" + strconv.FormatInt(id, 10)
	}

	var p Property
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateListing publishes a rent or sale listing. Agents only.
func (c *Client) CreateListing(ctx context.Context, listingType string, l Listing) (*Property, error) {
	if err := c.require(RoleAgent); err != nil {
		return nil, err
	}
	if err := checkForm(listingForm{Name: l.Name, Price: l.Price, Location: l.Location, Image: l.Image}); err != nil {
		return nil, err
	}

	var path string
	switch listingType {
	case "rent":
		path = "/properties/for-rent"
	case "sale":
		path = "/properties/for-sale"
	default:
		return nil, &ValidationError{Fields: map[string]string{"listing_type": "must be rent or sale"}}
	}

	var p Property
	if err := c.do(ctx, http.MethodPost, path, nil, l, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteListing(ctx context.Context, id int64) error {
	if err := c.require(RoleAgent); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/properties/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) MyListings(ctx context.Context) ([]Property, error) {
	if err := c.require(RoleAgent); err != nil {
		return nil, err
	}
	props := []Property{}
	if err := c.do(ctx, http.MethodGet, "/properties", nil, nil, &props); err != nil {
		return nil, err
	}
	return nonNil(props), nil
}

func (c *Client) UnitTypes(ctx context.Context) ([]UnitType, error) {
	var out struct {
		UnitTypes []UnitType `json:"unit_types"`
	}
	if err := c.do(ctx, http.MethodGet, "/unit_types", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.UnitTypes == nil {
		out.UnitTypes = []UnitType{}
	}
	return out.UnitTypes, nil
}

// Rent pays for one unit of a rent listing. amount 0 pays the listed price.
func (c *Client) Rent(ctx context.Context, propertyID, amount int64, phone string) (*Rental, error) {
	if err := c.require(RoleClient); err != nil {
		return nil, err
	}
	if err := checkForm(paymentForm{PropertyID: propertyID, PhoneNumber: phone}); err != nil {
		return nil, err
	}

	var out struct {
		Rental Rental `json:"rental"`
	}
	err := c.do(ctx, http.MethodPost, "/rentals", nil, map[string]any{
		"property_id":  propertyID,
		"rent_amount":  amount,
		"phone_number": phone,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Rental, nil
}

// Buy pays for a sale listing. amount 0 pays the listed price.
func (c *Client) Buy(ctx context.Context, propertyID, amount int64, phone string) (*Purchase, error) {
	if err := c.require(RoleClient); err != nil {
		return nil, err
	}
	if err := checkForm(paymentForm{PropertyID: propertyID, PhoneNumber: phone}); err != nil {
		return nil, err
	}

	var out struct {
		Purchase Purchase `json:"purchase"`
	}
	err := c.do(ctx, http.MethodPost, "/purchases", nil, map[string]any{
		"property_id":  propertyID,
		"amount":       amount,
		"phone_number": phone,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Purchase, nil
}

func (c *Client) Rentals(ctx context.Context) ([]Rental, error) {
	if err := c.require(""); err != nil {
		return nil, err
	}
	var out struct {
		Rentals []Rental `json:"rentals"`
	}
	if err := c.do(ctx, http.MethodGet, "/rentals", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Rentals == nil {
		out.Rentals = []Rental{}
	}
	return out.Rentals, nil
}

func (c *Client) Purchases(ctx context.Context) ([]Purchase, error) {
	if err := c.require(""); err != nil {
		return nil, err
	}
	var out struct {
		Purchases []Purchase `json:"purchases"`
	}
	if err := c.do(ctx, http.MethodGet, "/purchases", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Purchases == nil {
		out.Purchases = []Purchase{}
	}
	return out.Purchases, nil
}

func (c *Client) AgentPayments(ctx context.Context) ([]Payment, error) {
	if err := c.require(RoleAgent); err != nil {
		return nil, err
	}
	var out struct {
		Payments []Payment `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/rental-payments", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Payments == nil {
		out.Payments = []Payment{}
	}
	return out.Payments, nil
}

// require applies Guard to the current session before a request is sent.
func (c *Client) require(role Role) error {
	s, err := c.session.Current()
	if err != nil {
		return err
	}
	return Guard(s, role)
}

func nonNil(props []Property) []Property {
	if props == nil {
		return []Property{}
	}
	return props
}
