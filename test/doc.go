// Package test provides the acceptance test harness for a deployed PI System.
//
// The harness runs in one of two modes:
//
//   - Fake: the default. A fake PI Web API (see the mocks package) is started per suite
//     and the settings point at it, so the acceptance tests exercise the harness itself.
//
//   - Live: with PITESTS_LIVE=true the settings file (pitests.env, or the file named by
//     PITESTS_SETTINGS) describes a real deployment and every test runs against it.
//
// The package provides:
//
//   - Suite: settings, the skip evaluator, the PI Web API fixture and an optional
//     check history database, with cleanup chaining
//
//   - Requirement helpers that skip a test with a reason when a setting is missing, a
//     product is below a patch level or PI Web API lacks an endpoint
//
//   - Polling helpers built on the eventually package
//
// Example Usage:
//
//	func TestElementRoundTrip(t *testing.T) {
//	    s := test.NewSuite(t)
//	    defer s.Cleanup()
//
//	    webAPI := s.RequireWebAPI()
//	    element, err := webAPI.AF.CreateElement(s.Context(), "Element", "")
//	    s.Require().NoError(err)
//	}
package test
