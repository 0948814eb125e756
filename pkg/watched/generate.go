package watched

import (
	_ "go.uber.org/mock/gomock"
)

//go:generate mockgen -package mocks -destination mocks/mock_watch_client.go github.com/sweeparr/sweeparr/pkg/watched Client
