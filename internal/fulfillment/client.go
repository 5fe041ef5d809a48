package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// Kiss-cut sticker blueprint と print provider。商品は全部この組み合わせに固定
	StickerBlueprintID     = 1268
	StickerPrintProviderID = 215

	// ベンダー障害で配送処理を無限に待たせないための上限
	requestTimeout = 30 * time.Second
)

// 認証情報の未設定。呼び出し側でConfigurationErrorに変換する
var (
	ErrMissingAPIKey = errors.New("printify api key is not set")
	ErrMissingShopID = errors.New("printify shop id is not set")
)

// Client はPrintify REST APIのクライアント。
type Client struct {
	apiKey  string
	shopID  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string, shopID string, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		shopID:  shopID,
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type Variant struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type CreateProductInput struct {
	Title           string
	Description     string
	BlueprintID     int
	PrintProviderID int
	UploadID        string
	VariantID       int
}

type OrderLineItem struct {
	ProductID string `json:"product_id"`
	VariantID int    `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

type AddressTo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

type OrderRequest struct {
	// external_id に決済IDを入れる。ベンダー側の突合と再送時の収束に使う
	ExternalID string          `json:"external_id"`
	LineItems  []OrderLineItem `json:"line_items"`
	AddressTo  AddressTo       `json:"address_to"`
}

type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type uploadRequest struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

type variantsResponse struct {
	Variants []Variant `json:"variants"`
}

type productVariant struct {
	ID        int  `json:"id"`
	Price     int  `json:"price"`
	IsEnabled bool `json:"is_enabled"`
}

type placeholderImage struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
	Angle int     `json:"angle"`
}

type placeholder struct {
	Position string             `json:"position"`
	Images   []placeholderImage `json:"images"`
}

type printArea struct {
	VariantIDs   []int         `json:"variant_ids"`
	Placeholders []placeholder `json:"placeholders"`
}

type createProductRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	BlueprintID     int              `json:"blueprint_id"`
	PrintProviderID int              `json:"print_provider_id"`
	Variants        []productVariant `json:"variants"`
	PrintAreas      []printArea      `json:"print_areas"`
}

type createProductResponse struct {
	ID string `json:"id"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// UploadImage は画像URLをベンダーに登録してupload idを返す。
func (c *Client) UploadImage(ctx context.Context, imageURL string) (string, error) {
	req := uploadRequest{
		FileName: uuid.NewString() + ".png",
		URL:      imageURL,
	}
	var resp uploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/uploads/images.json", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("upload returned empty id")
	}
	return resp.ID, nil
}

// GetVariants はblueprint×print providerの提供バリアント一覧を返す。
// 商品作成では先頭のバリアントを決め打ちで使う。
func (c *Client) GetVariants(ctx context.Context, blueprintID int, printProviderID int) ([]Variant, error) {
	path := fmt.Sprintf("/catalog/blueprints/%d/print_providers/%d/variants.json", blueprintID, printProviderID)
	var resp variantsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Variants) == 0 {
		return nil, fmt.Errorf("no variants offered for blueprint %d provider %d", blueprintID, printProviderID)
	}
	return resp.Variants, nil
}

// CreateProduct はアップロード済み画像1枚からsellableな商品を作る。
func (c *Client) CreateProduct(ctx context.Context, in CreateProductInput) (string, error) {
	if c.shopID == "" {
		return "", ErrMissingShopID
	}
	req := createProductRequest{
		Title:           in.Title,
		Description:     in.Description,
		BlueprintID:     in.BlueprintID,
		PrintProviderID: in.PrintProviderID,
		Variants: []productVariant{
			{ID: in.VariantID, Price: 399, IsEnabled: true},
		},
		PrintAreas: []printArea{
			{
				VariantIDs: []int{in.VariantID},
				Placeholders: []placeholder{
					{
						Position: "front",
						Images: []placeholderImage{
							{ID: in.UploadID, X: 0.5, Y: 0.5, Scale: 1, Angle: 0},
						},
					},
				},
			},
		},
	}

	path := fmt.Sprintf("/shops/%s/products.json", c.shopID)
	var resp createProductResponse
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("product creation returned empty id")
	}
	return resp.ID, nil
}

// SubmitOrder は全明細をまとめた発注を1回で送る。戻り値はベンダーの注文ID。
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (string, error) {
	if c.shopID == "" {
		return "", ErrMissingShopID
	}
	path := fmt.Sprintf("/shops/%s/orders.json", c.shopID)
	var resp createOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("order submission returned empty id")
	}
	return resp.ID, nil
}

// GetOrder はベンダー側の注文状態を取得する（読み取り時のステータス更新用）。
func (c *Client) GetOrder(ctx context.Context, printifyOrderID string) (Order, error) {
	if c.shopID == "" {
		return Order{}, ErrMissingShopID
	}
	path := fmt.Sprintf("/shops/%s/orders/%s.json", c.shopID, printifyOrderID)
	var resp Order
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Order{}, err
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("printify %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("printify %s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && (apiErr.Message != "" || apiErr.Error != "") {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.Error
			}
			return fmt.Errorf("printify %s %s: status %d: %s", method, path, resp.StatusCode, msg)
		}
		return fmt.Errorf("printify %s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("printify %s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
