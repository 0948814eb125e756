package sonarr

import (
	_ "go.uber.org/mock/gomock"
)

//go:generate mockgen -package mocks -destination mocks/mock_sonarr_client.go github.com/sweeparr/sweeparr/pkg/sonarr ClientInterface
