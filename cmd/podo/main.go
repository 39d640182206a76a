// Command podo is the terminal front-end for the musical reservation
// service.  It drives the same controller and workflows the web page
// used: browse and sort the catalog, log in, pick a seat on the board
// and reserve it, or cancel an existing booking.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/CLD-3rd/team2-frontend/internal/api"
	"github.com/CLD-3rd/team2-frontend/internal/app"
	"github.com/CLD-3rd/team2-frontend/internal/auth"
	"github.com/CLD-3rd/team2-frontend/internal/booking"
	"github.com/CLD-3rd/team2-frontend/internal/catalog"
	"github.com/CLD-3rd/team2-frontend/internal/config"
	"github.com/CLD-3rd/team2-frontend/internal/grid"
)

func main() {
	cfg := config.Load()
	server := flag.String("server", cfg.ServerURL, "backend origin, without the /api prefix")
	tokenFile := flag.String("token-file", cfg.TokenFile, "where the session token is stored")
	flag.Parse()

	session := auth.NewStore(*tokenFile)
	if err := session.Load(); err != nil {
		log.Printf("podo: could not read saved session: %v", err)
	}
	client := api.NewClient(*server+"/api", session)
	a := app.New(client, session)

	ctx := context.Background()
	a.CheckAuth(ctx)
	if err := a.RefreshCatalog(ctx); err != nil {
		fmt.Printf("could not load the catalog from %s: %v\n", *server, err)
	}

	fmt.Println("savemypodo — musical reservations")
	if u := a.User(); u != nil {
		fmt.Printf("welcome back, %s\n", u.Nickname)
	}
	fmt.Println(`type "help" for commands`)

	in := bufio.NewScanner(os.Stdin)
	for prompt(a); in.Scan(); prompt(a) {
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			printHelp()
		case "list":
			printCatalog(a)
		case "sort":
			changeSort(ctx, a, args)
		case "login":
			doLogin(ctx, a, args)
		case "logout":
			a.Logout(ctx)
			fmt.Println("logged out")
		case "me":
			if u := a.User(); u != nil {
				fmt.Printf("%s <%s>\n", u.Nickname, u.Email)
			} else {
				fmt.Println("not logged in")
			}
		case "reserve":
			doReserve(ctx, a, in, args)
		case "cancel":
			doCancel(ctx, a, args)
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q, try \"help\"\n", cmd)
		}
		if n := a.TakeNotice(); n != "" {
			fmt.Println(n)
		}
	}
}

func prompt(a *app.App) {
	fmt.Printf("[%s]> ", a.SortMode())
}

func printHelp() {
	fmt.Println(`commands:
  list                     show the catalog in the current sort mode
  sort <mode>              newest | most-reserved | my-reservations
  login <email> <pass>     log in and store the session
  logout                   drop the session
  me                       show the logged-in user
  reserve <musical-id>     open the seat board for a show
  cancel <musical-id>      cancel a reservation
  quit`)
}

func printCatalog(a *app.App) {
	musicals := a.Visible()
	if len(musicals) == 0 {
		fmt.Println("nothing to show")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDATE\tTIME\tPRICE\tSEATS\t")
	for _, m := range musicals {
		marker := ""
		if m.IsReserved {
			marker = " *"
		}
		fmt.Fprintf(w, "%d\t%s%s\t%s\t%s\t%d\t%d/%d\t\n",
			m.ID, m.Title, marker, m.Date, m.TimeRange, m.Price, m.RemainingSeats, grid.Capacity)
	}
	w.Flush()
}

func changeSort(ctx context.Context, a *app.App, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: sort <newest|most-reserved|my-reservations>")
		return
	}
	mode, err := catalog.ParseSortMode(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := a.ChangeSort(ctx, mode); err != nil {
		fmt.Println(err)
		return
	}
	printCatalog(a)
}

func doLogin(ctx context.Context, a *app.App, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	if err := a.Login(ctx, args[0], args[1]); err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}
	fmt.Printf("welcome, %s\n", a.User().Nickname)
	if err := a.RefreshCatalog(ctx); err != nil {
		fmt.Printf("catalog refresh failed: %v\n", err)
	}
}

func doCancel(ctx context.Context, a *app.App, args []string) {
	id, ok := parseID(args, "cancel")
	if !ok {
		return
	}
	if err := a.CancelReservation(ctx, id); err != nil {
		fmt.Println(err)
	}
}

// doReserve runs the seat-selection dialog as a nested input loop.
func doReserve(ctx context.Context, a *app.App, in *bufio.Scanner, args []string) {
	id, ok := parseID(args, "reserve")
	if !ok {
		return
	}
	flow, err := a.OpenReservation(ctx, id)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer flow.Close()

	if msg := flow.ErrorMessage(); msg != "" {
		fmt.Println(msg)
	}
	printBoard(flow)
	fmt.Println(`pick a seat by id (e.g. C12), "ok" to confirm, "back" to leave`)

	for fmt.Print("seat> "); in.Scan(); fmt.Print("seat> ") {
		word := strings.TrimSpace(in.Text())
		switch word {
		case "":
			continue
		case "back":
			return
		case "ok":
			if err := flow.RequestConfirm(); err != nil {
				fmt.Println("pick a seat first")
				continue
			}
			fmt.Printf("reserve %s for %d won? (y/n) ", strings.Join(flow.SelectedSeats(), ", "), flow.TotalPrice())
			if !in.Scan() || strings.TrimSpace(in.Text()) != "y" {
				flow.DismissConfirm()
				continue
			}
			if err := flow.Confirm(ctx); err != nil {
				fmt.Println(flow.ErrorMessage())
				printBoard(flow)
				continue
			}
			fmt.Println("reservation complete")
			return
		default:
			if err := flow.ToggleSeat(strings.ToUpper(word)); err != nil {
				fmt.Println(err)
				continue
			}
			printBoard(flow)
			fmt.Printf("selected: %s  total: %d\n", strings.Join(flow.SelectedSeats(), ", "), flow.TotalPrice())
		}
	}
}

// printBoard renders the seat grid with [x] reserved, (#) selected and
// the column number for free seats.
func printBoard(flow *booking.Flow) {
	seats := flow.Seats()
	for i, s := range seats {
		if s.Column == 1 {
			fmt.Printf("%s ", s.Row)
		}
		switch {
		case s.Reserved:
			fmt.Print("  x")
		case s.Selected:
			fmt.Printf(" (%d)", s.Column)
		default:
			fmt.Printf(" %2d", s.Column)
		}
		if s.Column == grid.Columns || i == len(seats)-1 {
			fmt.Println()
		}
	}
}

func parseID(args []string, cmd string) (uint64, bool) {
	if len(args) != 1 {
		fmt.Printf("usage: %s <musical-id>\n", cmd)
		return 0, false
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Println("musical id must be a number")
		return 0, false
	}
	return id, true
}
