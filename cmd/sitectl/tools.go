package main

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"securecam-site/models"
	"securecam-site/recommender"
	"securecam-site/sitedata"
	"securecam-site/utils"
)

// RecommendInput is the input of the recommend tool
type RecommendInput struct {
	Answers         models.QuestionnaireAnswers `json:"answers" jsonschema:"project builder questionnaire answers"`
	Cart            map[string]int              `json:"cart,omitempty" jsonschema:"product id to quantity of products already chosen, cameras included"`
	IncludeOptional bool                        `json:"include_optional,omitempty" jsonschema:"whether optional suggestions are added to the cart"`
}

// ListProductsInput is the input of the list_products tool
type ListProductsInput struct {
	Category string `json:"category,omitempty" jsonschema:"optional category id filter"`
	Tag      string `json:"tag,omitempty" jsonschema:"optional tag filter, e.g. recorder_nvr"`
}

// ProductSummary is one catalog entry as returned to tools
type ProductSummary struct {
	ID       string   `json:"id" jsonschema:"product identifier"`
	Name     string   `json:"name" jsonschema:"product name"`
	Brand    string   `json:"brand" jsonschema:"brand"`
	Model    string   `json:"model" jsonschema:"model"`
	Category string   `json:"category" jsonschema:"category name, empty when the category no longer exists"`
	PriceNet int64    `json:"price_net" jsonschema:"net price without decimals"`
	Price    string   `json:"price" jsonschema:"formatted price"`
	Tags     []string `json:"tags" jsonschema:"matching tags"`
}

// ListProductsResult is the output of the list_products tool
type ListProductsResult struct {
	Products []ProductSummary `json:"products" jsonschema:"active products in catalog order"`
}

// QuoteInput is the input of the quote tool
type QuoteInput struct {
	Cart map[string]int `json:"cart" jsonschema:"product id to quantity"`
}

// QuoteLine is one priced cart line
type QuoteLine struct {
	ProductID string `json:"product_id" jsonschema:"product identifier"`
	Name      string `json:"name" jsonschema:"product name"`
	Quantity  int    `json:"quantity" jsonschema:"quantity"`
	LineTotal int64  `json:"line_total" jsonschema:"quantity times net price"`
}

// QuoteResult is the output of the quote tool
type QuoteResult struct {
	Lines     []QuoteLine `json:"lines" jsonschema:"priced lines; unknown product ids are skipped"`
	Total     int64       `json:"total" jsonschema:"sum of line totals"`
	TotalText string      `json:"total_text" jsonschema:"formatted total"`
}

// toolset answers tool calls from the current local document
type toolset struct {
	store  *sitedata.Store
	engine *recommender.Engine
}

func newMCPServer(store *sitedata.Store, engine *recommender.Engine) *mcp.Server {
	tools := &toolset{store: store, engine: engine}
	server := mcp.NewServer(&mcp.Implementation{Name: "sitectl", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend",
		Description: "Suggest recorder, switch, power supplies, wireless links and UPS for a camera project",
	}, tools.recommend)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_products",
		Description: "List the active catalog products, optionally filtered by category or tag",
	}, tools.listProducts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "quote",
		Description: "Price a cart against the catalog",
	}, tools.quote)

	return server
}

func (t *toolset) recommend(_ context.Context, _ *mcp.CallToolRequest, input RecommendInput) (*mcp.CallToolResult, models.RecommendResponse, error) {
	doc, _ := t.store.Snapshot()
	resp := t.engine.Plan(doc.Catalog.ActiveProducts(), models.RecommendRequest{
		Answers:         input.Answers,
		Cart:            models.Cart(input.Cart).Clone(),
		IncludeOptional: input.IncludeOptional,
	})
	if resp.Suggestions == nil {
		resp.Suggestions = []models.Suggestion{}
	}
	return nil, resp, nil
}

func (t *toolset) listProducts(_ context.Context, _ *mcp.CallToolRequest, input ListProductsInput) (*mcp.CallToolResult, ListProductsResult, error) {
	doc, _ := t.store.Snapshot()
	result := ListProductsResult{Products: []ProductSummary{}}
	for _, p := range doc.Catalog.ActiveProducts() {
		if input.Category != "" && !strings.EqualFold(p.CategoryID, input.Category) {
			continue
		}
		if input.Tag != "" && !p.HasTag(input.Tag) {
			continue
		}
		result.Products = append(result.Products, ProductSummary{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Model:    p.Model,
			Category: doc.Catalog.CategoryName(p.CategoryID),
			PriceNet: p.PriceNet,
			Price:    utils.FormatPrice(p.PriceNet),
			Tags:     append([]string{}, p.Tags...),
		})
	}
	return nil, result, nil
}

func (t *toolset) quote(_ context.Context, _ *mcp.CallToolRequest, input QuoteInput) (*mcp.CallToolResult, QuoteResult, error) {
	doc, _ := t.store.Snapshot()
	result := QuoteResult{Lines: []QuoteLine{}}
	for _, line := range models.Cart(input.Cart).Clone().Lines(doc.Catalog) {
		result.Lines = append(result.Lines, QuoteLine{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
		result.Total = utils.SumLines(result.Total, line.LineTotal)
	}
	result.TotalText = utils.FormatPrice(result.Total)
	return nil, result, nil
}
