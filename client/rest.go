// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/netwisp/fwmon/upgrade"
)

// Api is the REST side of the upgrader backend. Read endpoints retry on
// transient server errors; the cancel action never retries, a duplicate
// cancel against a reflashing device is worse than a failed one.
type Api struct {
	http   *resty.Client
	cancel *resty.Client
}

func NewApi(baseURL, token, csrfToken string) *Api {
	base := func() *resty.Client {
		c := resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second)
		if token != "" {
			c.SetAuthToken(token)
		}
		if csrfToken != "" {
			c.SetHeader("X-CSRFToken", csrfToken)
			c.SetCookie(&http.Cookie{Name: "csrftoken", Value: csrfToken})
		}
		return c
	}
	reads := base().
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() >= 500
		})
	return &Api{http: reads, cancel: base()}
}

// Cancel asks the server to stop an in-progress operation. The HTTP
// response only acknowledges the request; the row is updated when a
// later status message confirms the change.
func (a *Api) Cancel(ctx context.Context, operationId string) error {
	resp, err := a.cancel.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/v1/firmware-upgrader/upgrade-operation/%s/cancel/", operationId))
	if err != nil {
		return fmt.Errorf("cancel request for operation %s failed: %w", operationId, err)
	}
	if resp.IsError() {
		return fmt.Errorf("unable to cancel operation %s: %s", operationId, apiErrorMessage(resp))
	}
	return nil
}

// Operations lists upgrade operations, optionally filtered by device.
func (a *Api) Operations(ctx context.Context, deviceId string) ([]upgrade.Operation, error) {
	req := a.http.R().SetContext(ctx)
	if deviceId != "" {
		req.SetQueryParam("device", deviceId)
	}
	resp, err := req.Get("/api/v1/firmware-upgrader/upgrade-operation/")
	if err != nil {
		return nil, fmt.Errorf("unable to list operations: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unable to list operations: %s", apiErrorMessage(resp))
	}
	var ops []upgrade.Operation
	if err := json.Unmarshal(resp.Body(), &ops); err != nil {
		return nil, fmt.Errorf("unable to parse operations list: %w", err)
	}
	return ops, nil
}

// apiErrorMessage extracts the JSON "error" field when the server sent
// one, falling back to the HTTP status.
func apiErrorMessage(resp *resty.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return body.Error
	}
	return resp.Status()
}
