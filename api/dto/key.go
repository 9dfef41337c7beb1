package dto

import "strings"

const keySeparator = ":"

// ResolutionKey identifies one directory lookup: the (franchise, outlet)
// pair after normalization. Two keys are equal iff their normalized forms
// are equal, so the struct is usable directly as a map key.
type ResolutionKey struct {
	FranchiseID string
	OutletID    string
}

// NewResolutionKey trims both components and reports ok=false when either
// is empty afterwards; such a ticket is unresolvable and must not reach
// the directory.
func NewResolutionKey(franchiseID, outletID string) (ResolutionKey, bool) {
	fid := strings.TrimSpace(franchiseID)
	oid := strings.TrimSpace(outletID)
	if fid == "" || oid == "" {
		return ResolutionKey{}, false
	}
	return ResolutionKey{FranchiseID: fid, OutletID: oid}, true
}

// ResolutionKey returns the ticket's normalized lookup key.
func (t *TicketRecord) ResolutionKey() (ResolutionKey, bool) {
	return NewResolutionKey(t.FranchiseID, t.OutletID)
}

// String is used in logs and metric labels only.
func (k ResolutionKey) String() string {
	return k.FranchiseID + keySeparator + k.OutletID
}
