// Package atmclient is a small HTTP client for the atm API, used by atmctl.
package atmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alovak/atm-playground/atm"
	"github.com/alovak/atm-playground/atm/models"
)

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

// InsertCard returns the session id.
func (c *Client) InsertCard(ctx context.Context, cardID, pin string) (string, error) {
	var resp atm.InsertCardResponse
	err := c.do(ctx, http.MethodPost, "/card", atm.InsertCardRequest{CardID: cardID, PIN: pin}, &resp)
	if err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (c *Client) RemoveCard(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/card", nil, nil)
}

func (c *Client) Status(ctx context.Context) (models.Status, error) {
	var status models.Status
	err := c.do(ctx, http.MethodGet, "/session", nil, &status)
	return status, err
}

func (c *Client) Balance(ctx context.Context) (int64, error) {
	var resp atm.BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/balance", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Deposit returns the new balance.
func (c *Client) Deposit(ctx context.Context, amount int64) (int64, error) {
	var resp atm.BalanceResponse
	if err := c.do(ctx, http.MethodPost, "/deposit", atm.AmountRequest{Amount: &amount}, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (c *Client) Withdraw(ctx context.Context, amount int64) (atm.WithdrawResponse, error) {
	var resp atm.WithdrawResponse
	err := c.do(ctx, http.MethodPost, "/withdraw", atm.AmountRequest{Amount: &amount}, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// sentinelsByStatus lists the models errors each status code can carry, as
// mapped by the API.
var sentinelsByStatus = map[int][]error{
	http.StatusConflict:            {models.ErrCardAlreadyInserted, models.ErrNoCardInserted},
	http.StatusNotFound:            {models.ErrUnknownCard},
	http.StatusUnauthorized:        {models.ErrWrongPIN},
	http.StatusBadRequest:          {models.ErrNegativeAmount},
	http.StatusUnprocessableEntity: {models.ErrInsufficientFunds, models.ErrBalanceOverflow},
}

// StatusError is returned for non-2xx responses. It unwraps to the matching
// models error when the server reported one.
type StatusError struct {
	Code    int
	Message string
	err     error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status=%d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.err
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)

	var payload atm.ErrorResponse
	msg := strings.TrimSpace(string(b))
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	se := &StatusError{Code: resp.StatusCode, Message: msg}
	// the status narrows the candidates; the wrapped message picks one
	for _, s := range sentinelsByStatus[resp.StatusCode] {
		if strings.HasSuffix(msg, s.Error()) {
			se.err = s
			break
		}
	}
	return se
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
