package ebay

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/samwhite/cardscout/internal/types"
)

// Cap on sold sales averaged into an estimate. The page is newest-first,
// so this bounds the estimate to recent sales.
const maxSoldSamples = 10

var (
	itemLinkRe = regexp.MustCompile(`/itm/(\d+)`)
	priceNumRe = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	bidCountRe = regexp.MustCompile(`(\d+)\s+bids?`)
	timeLeftRe = regexp.MustCompile(`(?:(\d+)\s*d)?\s*(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?\s*left`)
)

// ParseSearchResults extracts listings from a rendered result page. Cards
// missing a title or a parseable price are skipped, as is eBay's "Shop on
// eBay" filler card.
func ParseSearchResults(rendered string, saleType types.SaleType) ([]types.Listing, error) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, err
	}

	var listings []types.Listing
	for _, card := range resultCards(doc) {
		listing, ok := parseCard(card, saleType)
		if !ok {
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// ParseSoldPrices extracts sale prices from a rendered sold-and-completed
// page, newest first, capped at maxSoldSamples.
func ParseSoldPrices(rendered string) ([]float64, error) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, err
	}

	var prices []float64
	for _, card := range resultCards(doc) {
		if len(prices) >= maxSoldSamples {
			break
		}
		title := textOfClass(card, "s-card__title")
		if isPlaceholderTitle(title) {
			continue
		}
		price, ok := ParsePrice(textOfClass(card, "s-card__price"))
		if !ok {
			continue
		}
		prices = append(prices, price)
	}
	return prices, nil
}

func resultCards(doc *html.Node) []*html.Node {
	var cards []*html.Node
	collectNodes(doc, &cards, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "li" &&
			(hasClass(n, "s-card") || hasClass(n, "s-item"))
	})
	return cards
}

func parseCard(card *html.Node, saleType types.SaleType) (types.Listing, bool) {
	title := firstNonEmpty(textOfClass(card, "s-card__title"), textOfClass(card, "s-item__title"))
	if isPlaceholderTitle(title) {
		return types.Listing{}, false
	}

	price, ok := ParsePrice(firstNonEmpty(textOfClass(card, "s-card__price"), textOfClass(card, "s-item__price")))
	if !ok {
		return types.Listing{}, false
	}

	link := cardLink(card)

	listing := types.Listing{
		ID:       cardID(card, link),
		Title:    title,
		Price:    price,
		Link:     link,
		SaleType: saleType,
	}

	rows := attributeRows(card)
	listing.Shipping = parseShipping(rows)
	listing.TotalPrice = listing.Price + listing.Shipping

	if saleType == types.Auction {
		listing.BidCount = parseBidCount(rows)
		listing.HoursRemaining = parseTimeLeft(rows)
	}
	return listing, true
}

// ParsePrice pulls a dollar amount out of text like "$1,234.56" or
// "$12.00 to $18.00". Ranges yield the lower bound.
func ParsePrice(text string) (float64, bool) {
	match := priceNumRe.FindString(text)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// ParseTimeLeft converts countdown text like "2d 3h left" or "54m left"
// into hours. Returns nil when the text carries no countdown.
func ParseTimeLeft(text string) *float64 {
	m := timeLeftRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return nil
	}
	hours := 24*atofOrZero(m[1]) + atofOrZero(m[2]) + atofOrZero(m[3])/60
	return &hours
}

// ParseBidCount reads "7 bids" style text. Returns -1 when no bid count
// is present.
func ParseBidCount(text string) int {
	m := bidCountRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

func parseShipping(rows []string) float64 {
	for _, row := range rows {
		lower := strings.ToLower(row)
		if !strings.Contains(lower, "shipping") && !strings.Contains(lower, "delivery") {
			continue
		}
		if strings.Contains(lower, "free") {
			return 0
		}
		if cost, ok := ParsePrice(row); ok {
			return cost
		}
	}
	return 0
}

func parseBidCount(rows []string) int {
	for _, row := range rows {
		if n := ParseBidCount(row); n >= 0 {
			return n
		}
	}
	return 0
}

func parseTimeLeft(rows []string) *float64 {
	for _, row := range rows {
		if hours := ParseTimeLeft(row); hours != nil {
			return hours
		}
	}
	return nil
}

func attributeRows(card *html.Node) []string {
	var nodes []*html.Node
	collectNodes(card, &nodes, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			(hasClass(n, "s-card__attribute-row") || hasClass(n, "s-item__detail"))
	})
	rows := make([]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, nodeText(n))
	}
	return rows
}

func cardLink(card *html.Node) string {
	var anchors []*html.Node
	collectNodes(card, &anchors, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" && attrVal(n, "href") != ""
	})
	for _, a := range anchors {
		if hasClass(a, "s-card__link") || hasClass(a, "s-item__link") {
			return attrVal(a, "href")
		}
	}
	for _, a := range anchors {
		if href := attrVal(a, "href"); strings.Contains(href, "/itm/") {
			return href
		}
	}
	return ""
}

func cardID(card *html.Node, link string) string {
	if id := attrVal(card, "id"); strings.HasPrefix(id, "item") {
		return strings.TrimPrefix(id, "item")
	}
	if m := itemLinkRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

func isPlaceholderTitle(title string) bool {
	return title == "" || strings.EqualFold(title, "Shop on eBay")
}

func collectNodes(n *html.Node, out *[]*html.Node, match func(*html.Node) bool) {
	if match(n) {
		*out = append(*out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNodes(c, out, match)
	}
}

func textOfClass(n *html.Node, class string) string {
	var found []*html.Node
	collectNodes(n, &found, func(c *html.Node) bool {
		return c.Type == html.ElementNode && hasClass(c, class)
	})
	if len(found) == 0 {
		return ""
	}
	return nodeText(found[0])
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func atofOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
