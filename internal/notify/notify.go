/*
Package notify handles reporting of deals via console output and email
notifications.
*/
package notify

import (
	"fmt"
	"strings"

	"github.com/samwhite/cardscout/internal/types"
)

// ReportDeals prints one owner's deals to the console.
func ReportDeals(owner string, deals []types.Deal) {
	if len(deals) == 0 {
		return
	}

	fmt.Println("\n===========================================")
	fmt.Printf("✅ %d DEAL(S) FOUND: %s\n", len(deals), owner)
	fmt.Println("===========================================")

	for i, d := range deals {
		var flags []string
		if d.SaleType == types.Auction {
			timeLeft := "?"
			if d.HoursRemaining != nil {
				timeLeft = fmt.Sprintf("%.1fh", *d.HoursRemaining)
			}
			flags = append(flags, fmt.Sprintf("AUCTION: %d bid(s), %s left", d.BidCount, timeLeft))
		}
		if d.IsDeal {
			flags = append(flags, "DEAL")
		}

		consoleOutput := fmt.Sprintf("\n--- DEAL #%d ---\n", i+1) +
			fmt.Sprintf("Title:  %s\n", d.Title) +
			fmt.Sprintf("Query:  %s\n", d.Query) +
			fmt.Sprintf("Price:  $%.2f (+ $%.2f shipping = $%.2f)\n", d.Price, d.Shipping, d.TotalPrice) +
			fmt.Sprintf("Limit:  $%.2f\n", d.Ceiling)

		if d.Numbered > 0 {
			consoleOutput += fmt.Sprintf("Print run: /%d\n", d.Numbered)
		}
		if len(flags) > 0 {
			consoleOutput += fmt.Sprintf("Flags:  [%s]\n", strings.Join(flags, "] ["))
		}
		if d.SoldEstimate != nil {
			consoleOutput += fmt.Sprintf("Recent sold avg: $%.2f (%d sale(s))\n",
				d.SoldEstimate.AveragePrice, d.SoldEstimate.SampleSize)
		}
		consoleOutput += fmt.Sprintf("Link:   %s\n", d.Link)

		fmt.Print(consoleOutput)
	}

	fmt.Println("\n===========================================")
}
