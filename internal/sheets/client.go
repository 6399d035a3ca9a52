package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client is a Store backed by a single Google spreadsheet.
type Client struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
}

var _ Store = (*Client)(nil)

// NewClient authenticates against Google Sheets and returns a Client for the
// configured spreadsheet.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewClientWithService(service, config.SpreadsheetID, logger), nil
}

// NewClientWithService wraps an already constructed Sheets service.
func NewClientWithService(service *sheets.Service, spreadsheetID string, logger *slog.Logger) *Client {
	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	appName := config.ApplicationName
	if appName == "" {
		appName = DefaultApplicationName
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient), option.WithUserAgent(appName))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// ListPartitions returns the titles of every tab in the spreadsheet.
func (c *Client) ListPartitions(ctx context.Context) ([]string, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, storeError("list", c.spreadsheetID, err)
	}

	names := make([]string, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			names = append(names, sheet.Properties.Title)
		}
	}
	return names, nil
}

// ReadRange returns the rows of rng. Trailing empty rows are omitted by the API.
func (c *Client) ReadRange(ctx context.Context, partition, rng string) ([][]any, error) {
	target := A1(partition, rng)
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, target).Context(ctx).Do()
	if err != nil {
		return nil, storeError("read", target, err)
	}
	return resp.Values, nil
}

// WriteRange overwrites rng starting at its top-left cell and returns the
// number of rows the API reports as updated.
func (c *Client) WriteRange(ctx context.Context, partition, rng string, rows [][]any, mode InputMode) (int, error) {
	target := A1(partition, rng)
	body := &sheets.ValueRange{Values: rows}

	resp, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, target, body).
		ValueInputOption(string(mode)).
		Context(ctx).
		Do()
	if err != nil {
		return 0, storeError("write", target, err)
	}

	c.logger.Debug("Wrote rows", "range", target, "rows", resp.UpdatedRows)
	return int(resp.UpdatedRows), nil
}

// ClearRange removes cell values in rng, keeping formatting.
func (c *Client) ClearRange(ctx context.Context, partition, rng string) error {
	target := A1(partition, rng)
	_, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, target, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return storeError("clear", target, err)
	}
	return nil
}

// CreatePartition adds a new tab with the given title.
func (c *Client) CreatePartition(ctx context.Context, name string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			},
		},
	}

	if _, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return storeError("create", name, err)
	}

	c.logger.Info("Created sheet", "sheet", name)
	return nil
}
