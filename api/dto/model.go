package dto

// /////////////////////
//// Persisted model
///////////////////////

// TicketRecord is the stored view of a support ticket as far as name
// resolution is concerned: the opaque merchant identifiers plus the
// resolved display names once they have been backfilled.
//
// Lifecycle: read once per batch from the store; the resolver never
// mutates a record in place; results are returned alongside and
// persistence goes back through the store.
type TicketRecord struct {
	ID            string `json:"id"`
	FranchiseID   string `json:"franchiseId"`
	OutletID      string `json:"outletId"`
	FranchiseName string `json:"franchiseName,omitempty"`
	OutletName    string `json:"outletName,omitempty"`
}

// HasResolvedNames reports whether the record already carries at least one
// durable display name, i.e. the fast path applies and no lookup is needed.
func (t *TicketRecord) HasResolvedNames() bool {
	return t.FranchiseName != "" || t.OutletName != ""
}

// /////////////////////
//// Resolution model
///////////////////////

// ResolutionResult is what a batch resolution produces for one ticket.
// Found is true when the names came either from the record itself or from
// a positive directory answer; lookup failure and "not found" both yield
// Found=false.
type ResolutionResult struct {
	FranchiseName string `json:"franchiseName,omitempty"`
	OutletName    string `json:"outletName,omitempty"`
	Found         bool   `json:"found"`
}
