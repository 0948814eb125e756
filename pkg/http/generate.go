package http

import (
	_ "go.uber.org/mock/gomock"
)

//go:generate mockgen -package mocks -destination mocks/mock_http_client.go github.com/sweeparr/sweeparr/pkg/http HTTPClient
