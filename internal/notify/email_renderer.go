package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/samwhite/cardscout/internal/ai"
	"github.com/samwhite/cardscout/internal/types"
)

// RenderedMessage is a notification ready for the transport.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// NotificationData is one owner's scan outcome, the input to rendering.
type NotificationData struct {
	Owner      string
	Deals      []types.Deal
	Brief      *ai.DealBrief
	CtlBaseURL string // control server base, e.g. http://localhost:5050; empty disables links
}

type dealView struct {
	types.Deal
	HideURL string
}

// IsAuction and HoursLeft exist for the HTML template, which cannot
// dereference the optional hours pointer itself.
func (d dealView) IsAuction() bool {
	return d.SaleType == types.Auction
}

func (d dealView) HoursLeft() string {
	if d.HoursRemaining == nil {
		return "?"
	}
	return fmt.Sprintf("%.1f", *d.HoursRemaining)
}

type emailView struct {
	Owner    string
	Deals    []dealView
	Brief    *ai.DealBrief
	ClearURL string
}

// HTMLEmailRenderer renders deal alerts as HTML emails with a plain text
// fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	subject := fmt.Sprintf("Card Deal Alert: %d deal(s) for %s", len(data.Deals), data.Owner)

	view := buildView(data)

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, view); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(view),
		HTML:    htmlBuf.String(),
	}, nil
}

func buildView(data NotificationData) emailView {
	view := emailView{
		Owner: data.Owner,
		Brief: data.Brief,
	}
	if data.CtlBaseURL != "" {
		view.ClearURL = fmt.Sprintf("%s/clear?owner=%s", data.CtlBaseURL, url.QueryEscape(data.Owner))
	}
	for _, d := range data.Deals {
		dv := dealView{Deal: d}
		if data.CtlBaseURL != "" && d.ID != "" {
			dv.HideURL = fmt.Sprintf("%s/hide?owner=%s&id=%s",
				data.CtlBaseURL, url.QueryEscape(data.Owner), url.QueryEscape(d.ID))
		}
		view.Deals = append(view.Deals, dv)
	}
	return view
}

// renderPlainText produces a readable plain text version for email clients
// that don't support HTML. This is also the form that survives the
// quiet-hours queue.
func renderPlainText(view emailView) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Deals found for: %s\n", view.Owner))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, d := range view.Deals {
		sb.WriteString(d.Title + "\n")
		sb.WriteString(fmt.Sprintf("   Price: $%.2f", d.Price))
		if d.Shipping > 0 {
			sb.WriteString(fmt.Sprintf(" + $%.2f shipping", d.Shipping))
		}
		sb.WriteString(fmt.Sprintf("\n   Total: $%.2f (limit $%.2f)\n", d.TotalPrice, d.Ceiling))

		if d.SaleType == types.Auction {
			timeLeft := "?"
			if d.HoursRemaining != nil {
				timeLeft = fmt.Sprintf("%.1fh", *d.HoursRemaining)
			}
			sb.WriteString(fmt.Sprintf("   Auction: %d bid(s), %s left", d.BidCount, timeLeft))
			if d.IsDeal {
				sb.WriteString("  ** DEAL **")
			}
			sb.WriteString("\n")
		}
		if d.Numbered > 0 {
			sb.WriteString(fmt.Sprintf("   Print run: /%d\n", d.Numbered))
		}
		if d.SoldEstimate != nil {
			sb.WriteString(fmt.Sprintf("   Recent sold avg: $%.2f (%d sale(s))\n",
				d.SoldEstimate.AveragePrice, d.SoldEstimate.SampleSize))
		}
		sb.WriteString(fmt.Sprintf("   Link: %s\n", d.Link))
		if d.HideURL != "" {
			sb.WriteString(fmt.Sprintf("   Hide: %s\n", d.HideURL))
		}
		sb.WriteString("\n")
	}

	if view.Brief != nil {
		if len(view.Brief.Summary) > 0 {
			sb.WriteString("SUMMARY\n")
			sb.WriteString(strings.Repeat("-", 20) + "\n")
			for _, s := range view.Brief.Summary {
				sb.WriteString(fmt.Sprintf("• %s\n", s))
			}
			sb.WriteString("\n")
		}
		if view.Brief.BestValue != "" {
			sb.WriteString(fmt.Sprintf("Best value: %s\n\n", view.Brief.BestValue))
		}
	}

	if view.ClearURL != "" {
		sb.WriteString(fmt.Sprintf("Clear history for %s: %s\n", view.Owner, view.ClearURL))
	}

	return sb.String()
}
