package client

// Guard checks a session against a page or action. An empty role only
// requires a login.
func Guard(s *Session, required Role) error {
	if s == nil || s.Token == "" {
		return ErrLoginRequired
	}
	if required != "" && s.Role != required {
		return ErrForbidden
	}
	return nil
}

// NextAfterLogin is where a freshly logged in user lands.
func NextAfterLogin(role Role) string {
	if role == RoleAgent {
		return "/agent"
	}
	return "/home"
}

func NextAfterSignup() string { return "/verify-email" }

type ListKind string

const (
	KindRentals   ListKind = "rentals"
	KindPurchases ListKind = "purchases"
	KindListings  ListKind = "listings"
	KindForRent   ListKind = "for-rent"
	KindForSale   ListKind = "for-sale"
	KindPayments  ListKind = "payments"
)

var emptyStates = map[ListKind]string{
	KindRentals:   "You haven't rented any properties yet.",
	KindPurchases: "You haven't purchased any properties yet.",
	KindListings:  "You haven't listed any properties yet.",
	KindForRent:   "No properties for rent match your search.",
	KindForSale:   "No properties for sale match your search.",
	KindPayments:  "No payments received yet.",
}

// EmptyState is the message shown in place of an empty list.
func EmptyState(kind ListKind) string {
	if msg, ok := emptyStates[kind]; ok {
		return msg
	}
	return "Nothing to show yet."
}
