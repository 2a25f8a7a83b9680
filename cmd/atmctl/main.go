// Command atmctl drives a running atm over its HTTP API, or sends one-shot
// transactions over the ISO 8583 host link.
//
//	atmctl [-atm URL] insert <card> <pin>
//	atmctl [-atm URL] remove|status|balance
//	atmctl [-atm URL] deposit|withdraw <amount>
//	atmctl [-host ADDR] transact <balance|deposit|withdraw> <card> <pin> [amount]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	atm8583 "github.com/alovak/atm-playground/atm/iso8583"
	"github.com/alovak/atm-playground/atm/models"
	"github.com/alovak/atm-playground/internal/atmclient"
	"github.com/alovak/atm-playground/internal/cardid"
)

var (
	flagATM      = flag.String("atm", "http://127.0.0.1:9090", "atm HTTP base URL")
	flagHost     = flag.String("host", "127.0.0.1:8583", "ISO 8583 host link address")
	flagTerminal = flag.String("terminal", atm8583.DefaultTerminalID, "terminal id sent in field 41")
	flagTimeout  = flag.Duration("timeout", 10*time.Second, "request timeout")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: atmctl [flags] <insert|remove|status|balance|deposit|withdraw|transact> [args]")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	c := &ctl{
		http:     atmclient.New(*flagATM, &http.Client{Timeout: *flagTimeout}),
		host:     *flagHost,
		terminal: *flagTerminal,
		out:      os.Stdout,
	}
	must(c.run(ctx, flag.Args()))
}

type ctl struct {
	http     *atmclient.Client
	host     string
	terminal string
	out      io.Writer
}

func (c *ctl) run(ctx context.Context, args []string) error {
	cmd, args := args[0], args[1:]

	switch cmd {
	case "insert":
		if len(args) != 2 {
			return fmt.Errorf("insert needs <card> <pin>")
		}
		sessionID, err := c.http.InsertCard(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "card %s inserted, session %s\n", cardid.Mask(args[0]), sessionID)
	case "remove":
		if err := c.http.RemoveCard(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "card removed")
	case "status":
		status, err := c.http.Status(ctx)
		if err != nil {
			return err
		}
		if !status.CardInserted {
			fmt.Fprintln(c.out, "no card")
			return nil
		}
		fmt.Fprintf(c.out, "card %s, session %s\n", status.Card, status.SessionID)
	case "balance":
		balance, err := c.http.Balance(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "balance: %d\n", balance)
	case "deposit":
		amount, err := parseAmount(args)
		if err != nil {
			return err
		}
		balance, err := c.http.Deposit(ctx, amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "deposited %d, balance: %d\n", amount, balance)
	case "withdraw":
		amount, err := parseAmount(args)
		if err != nil {
			return err
		}
		resp, err := c.http.Withdraw(ctx, amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "dispensed %d, balance: %d\n", resp.Amount, resp.Balance)
	case "transact":
		return c.transact(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (c *ctl) transact(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("transact needs <operation> <card> <pin> [amount]")
	}
	req := models.TransactionRequest{
		Operation: models.Operation(args[0]),
		CardID:    args[1],
		PIN:       args[2],
	}
	if req.Operation != models.OperationBalance {
		amount, err := parseAmount(args[3:])
		if err != nil {
			return err
		}
		req.Amount = amount
	}

	client := atm8583.NewClient(c.host)
	client.TerminalID = c.terminal
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Transact(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s approved, amount: %d, balance: %d\n", req.Operation, result.Amount, result.Balance)
	return nil
}

func parseAmount(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one amount")
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", args[0], err)
	}
	return amount, nil
}

func must(err error) {
	if err != nil {
		fail("%v", err)
	}
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
