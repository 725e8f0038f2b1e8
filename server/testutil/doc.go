// Package testutil serves routes through the production server stack for
// end-to-end tests.
//
//	srv := testutil.NewComponent(gateway.NewHandler(gw).Register)
//	testutil.T(t).Setup(srv)
//
//	resp, _ := http.Post(srv.BaseURL()+"/api/asr", "audio/wav", clip)
package testutil
