package test

import (
	"github.com/celestiaorg/pitests/test/mocks"
)

// SetupMockPIWebAPI starts a fake PI Web API and points the suite settings at it
func SetupMockPIWebAPI(suite *Suite, opts *mocks.PIWebAPIOptions) {
	suite.Mock = mocks.NewPIWebAPI(opts)
	suite.store = suite.Mock.Settings()

	// Update cleanup to close server
	originalCleanup := suite.cleanup
	suite.cleanup = func() {
		if originalCleanup != nil {
			originalCleanup()
		}
		suite.Mock.Close()
	}
}
