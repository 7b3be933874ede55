package session

import "farsha/internal/apiclient"

// Keys are the persisted key names of one namespace. An empty Business
// key means the namespace has no business object.
type Keys struct {
	Token     string
	Refresh   string
	Principal string
	Business  string
}

func (k Keys) all() []string {
	keys := []string{k.Token, k.Refresh, k.Principal}
	if k.Business != "" {
		keys = append(keys, k.Business)
	}
	return keys
}

type Namespace struct {
	Name      apiclient.Namespace
	Keys      Keys
	LoginPath string
	HomePath  string
}

var (
	CustomerNamespace = Namespace{
		Name: apiclient.NamespaceCustomer,
		Keys: Keys{
			Token:     "token",
			Refresh:   "refreshToken",
			Principal: "user",
		},
		LoginPath: "/login",
		HomePath:  "/",
	}

	PartnerNamespace = Namespace{
		Name: apiclient.NamespacePartner,
		Keys: Keys{
			Token:     "partnerToken",
			Refresh:   "partnerRefreshToken",
			Principal: "partner",
			Business:  "business",
		},
		LoginPath: "/partner/login",
		HomePath:  "/partner/dashboard",
	}
)

// NamespaceFor maps a client namespace tag to its session namespace.
func NamespaceFor(ns apiclient.Namespace) Namespace {
	if ns == apiclient.NamespacePartner {
		return PartnerNamespace
	}
	return CustomerNamespace
}
