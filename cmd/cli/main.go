// Command taxctl is a CLI client for the tax-refund service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chungyifen/tax-refund/internal/client/api"
	"github.com/chungyifen/tax-refund/internal/client/credstore"
	"github.com/chungyifen/tax-refund/internal/client/nav"
	"github.com/chungyifen/tax-refund/internal/client/session"
	"github.com/chungyifen/tax-refund/internal/model"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// ---- terminal side effects ----

// spinner prints navigation lifetime markers to stderr.
type spinner struct{}

func (spinner) Start() { fmt.Fprintln(os.Stderr, "...") }
func (spinner) Done()  {}

// stderrNotifier prints pipeline failure messages as they happen.
type stderrNotifier struct{}

func (stderrNotifier) Notify(msg string) { fmt.Fprintln(os.Stderr, msg) }

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `taxctl CLI
Usage:
  taxctl [-addr URL] <cmd> [args]

Commands:
  version
  login      -u <username> -p <password>       (saves token)
  logout                                       (clears token, notifies server)
  whoami                                       (resolved profile)
  routes                                       (route table with access flags)
  open       <path>                            (run the navigation guard)
  refunds                                      (list refund rows)
  add-refund -no <refundNo> -product <productNo> -qty <n> [-amount <dec>]
  users                                        (list accounts, needs USER_VIEW)
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func serverAddr(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv("TAXREFUND_ADDR"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// ---- main ----

// main dispatches subcommands over a shared credential store and pipeline.
func main() {
	addr := flag.String("addr", "", "server base URL (default $TAXREFUND_ADDR or http://localhost:8080)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := credstore.New()
	cli := api.New(serverAddr(*addr), store, stderrNotifier{})
	sess := session.New(cli, store)

	switch cmd {

	case "version":
		fmt.Printf("taxctl %s (%s)\n", version, buildDate)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		if err := sess.Login(ctx, *u, *p); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		if err := sess.Logout(ctx); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "whoami":
		p, err := sess.FetchAndResolve(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "routes":
		p, err := sess.FetchAndResolve(ctx)
		if err != nil {
			fail(err)
		}
		type row struct {
			Path, Title string
			Accessible  bool
		}
		rows := []row{}
		for _, r := range nav.Routes() {
			if r.Redirect != "" {
				continue
			}
			rows = append(rows, row{Path: r.Path, Title: r.Title, Accessible: nav.CanAccess(p.Roles, r)})
		}
		printJSON(rows)

	case "open":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "need a path, e.g. taxctl open /refund/list")
			os.Exit(1)
		}
		guard := nav.New(store, sess, spinner{}, stderrNotifier{})
		d := guard.Navigate(ctx, flag.Arg(1))
		switch d.Action {
		case nav.Allow:
			fmt.Printf("allow %s (%s)\n", d.Route.Path, d.Route.Title)
			if p, ok := sess.Profile(); ok && !nav.CanAccess(p.Roles, d.Route) {
				fmt.Println("warning: view requires", d.Route.Permissions)
			}
		case nav.Redirect:
			fmt.Println("redirect", d.Target)
		}

	case "refunds":
		rows, err := cli.ListRefunds(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(rows)

	case "add-refund":
		fs := flag.NewFlagSet("add-refund", flag.ExitOnError)
		no := fs.String("no", "", "refund number")
		product := fs.String("product", "", "product number")
		qty := fs.Int64("qty", 0, "quantity")
		amount := fs.String("amount", "", "refund amount (decimal string)")
		_ = fs.Parse(flag.Args()[1:])
		if *no == "" || *product == "" {
			fmt.Fprintln(os.Stderr, "need -no and -product")
			os.Exit(1)
		}
		row, err := cli.CreateRefund(ctx, model.NewTaxRefund{
			RefundNo:     *no,
			ProductNo:    *product,
			Quantity:     *qty,
			RefundAmount: *amount,
		})
		if err != nil {
			fail(err)
		}
		printJSON(row)

	case "users":
		users, err := cli.ListUsers(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(users)

	default:
		usage()
	}
}
