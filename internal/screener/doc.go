// Package screener holds the filter/sort/paginate state machine behind the
// industry screener.
//
// # Overview
//
// Everything here is pure: no I/O, no goroutines, no clocks. State is a value
// and every user action or service response is a method that returns the
// next State. Actions that need the network return a request descriptor
// (QueryRequest, IndustriesRequest, ProfileRequest, SectorsRequest); the
// caller runs it and feeds the outcome back through the matching transition.
//
//	Submit()            → *QueryRequest      → ResultsArrived / QueryFailed
//	SelectSector(s)     → *IndustriesRequest → IndustriesLoaded
//	OpenDetail(sym)     → *ProfileRequest    → ProfileLoaded / ProfileFailed
//
// # Stale Responses
//
// Each descriptor carries a sequence or generation number. Only the response
// for the most recently issued request of its kind is applied; anything older
// is returned unchanged. A slow first query can therefore never overwrite a
// faster second one, and a late industry list for a sector the user already
// left is dropped.
//
// # Rules
//
//   - Submit rejects MinCap > MaxCap and negative caps before any request.
//   - Page size is clamped to [1, 200], never rejected.
//   - Changing sector always resets the industry to unset.
//   - A new result set always resets the sort to server order.
//   - Sorting works on the loaded page only.
//   - A failed profile fetch degrades the dialog; it never sets Err.
//
// # Pagination
//
// HasMore prefers an authoritative total or hasMore flag from the service.
// Without them a full page is taken to mean more rows exist, which is wrong
// when the last page is exactly full.
package screener
