package auth

// Permission uids seeded on first start. Client applications define their
// own permissions at runtime; these are the ones the service itself checks.
const (
	// PermSystemOneIDAll allows managing the identity service itself.
	PermSystemOneIDAll = "system_oneid_all"
	// PermSystemArkMetaServerAll allows managing the meta server application.
	PermSystemArkMetaServerAll = "system_ark-meta-server_all"
)

// SeedPerms lists the permissions created by the seed, in creation order.
var SeedPerms = []struct { //nolint:gochecknoglobals
	UID   string
	Name  string
	Scope string
}{
	{UID: PermSystemOneIDAll, Name: "all permissions of oneid", Scope: "oneid"},
	{UID: PermSystemArkMetaServerAll, Name: "all permissions of ark-meta-server", Scope: "ark-meta-server"},
}
