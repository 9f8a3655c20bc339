// Package mocks provides shared hand-written mocks for testing.
//
// Each mock has a function field per method; a nil field falls back to a
// fixed successful response. Calls are recorded so tests can check what
// reached the backend and in which order.
//
//	gw := &mocks.MockGateway{
//	    RequestDocumentsFn: func(ctx context.Context, id domain.CandidateID, opts domain.RequestOptions) (*domain.RequestResult, error) {
//	        return nil, errors.New("boom")
//	    },
//	}
package mocks
