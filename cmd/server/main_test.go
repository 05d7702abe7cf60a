package main

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"finance-console/internal/config"
)

func TestRunReturnsConfigProblems(t *testing.T) {
	log, _ := test.NewNullLogger()
	err := run(&config.Config{DataBackend: "memory"}, log)
	assert.ErrorContains(t, err, "JWT")
}
