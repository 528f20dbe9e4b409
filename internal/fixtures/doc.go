// Package fixtures provides shared test context for the PI System acceptance tests.
//
// A fixture owns one PI Web API client for a test collection and exposes helpers
// to create, find, rename and remove uniquely named transient entities:
//
//   - PIWebAPIFixture: client construction from settings, the instance configuration
//     element and the Authenticate, IndexedSearch and Omf preconditions
//   - AFFixture: AF database elements, attributes and event frames
//   - PIFixture: Data Archive points and their values
//   - VisionFixture: the PI Vision product version
//
// Every entity a fixture creates is registered with a Cleanup that removes it in
// reverse order of creation. Cleanup failures are logged and never fail a test.
package fixtures
