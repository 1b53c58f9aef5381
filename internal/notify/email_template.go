package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Deals for {{.Owner}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1e3a5f 0%, #37393b 100%);
      color: #ffffff;
    }

    .owner {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
      margin-bottom: 4px;
    }

    .count {
      font-size: 15px;
      opacity: 0.9;
    }

    .deal {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .deal-title {
      font-size: 15px;
      font-weight: 600;
      margin-bottom: 8px;
    }

    .badge {
      display: inline-block;
      padding: 4px 10px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 4px;
      background: #f97316;
      color: #ffffff;
      text-transform: uppercase;
      letter-spacing: 0.05em;
      margin-left: 6px;
    }

    .meta-grid {
      display: table;
      width: 100%;
      font-size: 14px;
    }

    .meta-row {
      display: table-row;
    }

    .meta-label {
      display: table-cell;
      padding: 4px 16px 4px 0;
      color: #6b7280;
      font-weight: 500;
      white-space: nowrap;
      width: 110px;
    }

    .meta-value {
      display: table-cell;
      padding: 4px 0;
      color: #111827;
    }

    .sold-avg {
      color: #047857;
      font-weight: 600;
    }

    .cta-button {
      display: inline-block;
      margin: 10px 8px 0 0;
      padding: 8px 16px;
      font-size: 13px;
      font-weight: 600;
      color: #ffffff !important;
      background: #1e3a5f;
      border-radius: 6px;
      text-decoration: none;
    }

    .cta-secondary {
      background: #6b7280;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .summary-list {
      margin: 0;
      padding-left: 20px;
      font-size: 14px;
    }

    .summary-list li {
      margin-bottom: 8px;
      padding-left: 4px;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }

    a {
      color: #0b3d91;
      text-decoration: none;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="owner">{{.Owner}}</div>
      <div class="count">{{len .Deals}} deal(s) under your limits</div>
    </div>

    {{range .Deals}}
    <div class="deal">
      <div class="deal-title">
        {{.Title}}
        {{if .IsDeal}}<span class="badge">🔥 Deal</span>{{end}}
      </div>
      <div class="meta-grid">
        <div class="meta-row">
          <div class="meta-label">Price</div>
          <div class="meta-value">${{printf "%.2f" .Price}}{{if gt .Shipping 0.0}} + ${{printf "%.2f" .Shipping}} shipping{{end}}</div>
        </div>
        <div class="meta-row">
          <div class="meta-label">Total</div>
          <div class="meta-value">${{printf "%.2f" .TotalPrice}} (limit ${{printf "%.2f" .Ceiling}})</div>
        </div>
        {{if .Numbered}}
        <div class="meta-row">
          <div class="meta-label">Print run</div>
          <div class="meta-value">/{{.Numbered}}</div>
        </div>
        {{end}}
        {{if .IsAuction}}
        <div class="meta-row">
          <div class="meta-label">Auction</div>
          <div class="meta-value">{{.BidCount}} bid(s), {{.HoursLeft}}h left</div>
        </div>
        {{end}}
        {{if .SoldEstimate}}
        <div class="meta-row">
          <div class="meta-label">Sold avg</div>
          <div class="meta-value sold-avg">${{printf "%.2f" .SoldEstimate.AveragePrice}} ({{.SoldEstimate.SampleSize}} sale(s))</div>
        </div>
        {{end}}
      </div>
      <a href="{{.Link}}" class="cta-button" target="_blank" rel="noopener">View Listing →</a>
      {{if .HideURL}}
      <a href="{{.HideURL}}" class="cta-button cta-secondary" target="_blank" rel="noopener">Hide</a>
      {{end}}
    </div>
    {{end}}

    {{if .Brief}}
      {{if .Brief.Summary}}
      <div class="section">
        <div class="section-title">Summary</div>
        <ul class="summary-list">
          {{range .Brief.Summary}}
          <li>{{.}}</li>
          {{end}}
        </ul>
      </div>
      {{end}}

      {{if .Brief.BestValue}}
      <div class="section">
        <div class="section-title">Best Value</div>
        <div>{{.Brief.BestValue}}</div>
      </div>
      {{end}}
    {{end}}

    <div class="footer">
      Generated by cardscout{{if .ClearURL}} · <a href="{{.ClearURL}}">clear history for {{.Owner}}</a>{{end}}
    </div>
  </div>
</body>
</html>`
