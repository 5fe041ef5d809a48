package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	"github.com/JamalC77/chaosstickers-backend/internal/fulfillment"
	"github.com/JamalC77/chaosstickers-backend/internal/notification"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
)

// VendorClient はパイプラインが必要とする印刷ベンダーAPIの面。
type VendorClient interface {
	UploadImage(ctx context.Context, imageURL string) (string, error)
	GetVariants(ctx context.Context, blueprintID int, printProviderID int) ([]fulfillment.Variant, error)
	CreateProduct(ctx context.Context, in fulfillment.CreateProductInput) (string, error)
	SubmitOrder(ctx context.Context, req fulfillment.OrderRequest) (string, error)
	GetOrder(ctx context.Context, printifyOrderID string) (fulfillment.Order, error)
}

// Notifier は注文確認メールの送信。失敗しても注文は巻き戻さない。
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, m notification.OrderConfirmation) error
}

// FulfillmentUsecase は決済完了webhookから発注・永続化までを1本で実行する。
//
// 既知のギャップ（意図的にそのまま）：複数明細のprovisioning途中で失敗しても
// 作成済みのベンダー商品は削除しない。webhook再配送で再provisionされるため
// ベンダー側に孤児商品が残り得る。発注自体はexternal_id=決済IDで収束する。
type FulfillmentUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	customers repo.CustomerRepository
	images    repo.GeneratedImageRepository
	vendor    VendorClient
	notifier  Notifier
	feURL     string
}

func NewFulfillmentUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	customers repo.CustomerRepository,
	images repo.GeneratedImageRepository,
	vendor VendorClient,
	notifier Notifier,
	feURL string,
) *FulfillmentUsecase {
	return &FulfillmentUsecase{
		tx:        tx,
		orders:    orders,
		customers: customers,
		images:    images,
		vendor:    vendor,
		notifier:  notifier,
		feURL:     feURL,
	}
}

type FulfillmentResult struct {
	OrderID          int64
	AlreadyProcessed bool
}

// 明細1件分の作業状態。materialize → provision の順に埋まっていく
type fulfillmentItem struct {
	ImageID   int64
	Quantity  int64
	ImageURL  string
	ProductID string
	VariantID int
}

// 永続化時にunique制約で負けた場合の内部シグナル
var errLostPaymentRace = errors.New("lost payment id race")

// ProcessPaidCheckout はcheckout完了イベント1件を処理する。
// 各ステージは前段の失敗で即中断し、後続の外部呼び出しは行わない。
func (u *FulfillmentUsecase) ProcessPaidCheckout(ctx context.Context, intent OrderIntent) (FulfillmentResult, error) {
	// 冪等性ゲート：同じ決済IDの注文が既にあれば何もしない（成功扱い）
	existing, found, err := u.orders.FindByPaymentID(ctx, intent.PaymentID)
	if err != nil {
		return FulfillmentResult{}, NewStorageError(err, "failed to look up payment %s", intent.PaymentID)
	}
	if found {
		return FulfillmentResult{OrderID: existing.ID, AlreadyProcessed: true}, nil
	}

	// 顧客のfind-or-create（emailキーのupsert、同時配送でも1件）
	name := strings.TrimSpace(intent.Shipping.FirstName + " " + intent.Shipping.LastName)
	customer, err := u.customers.Upsert(ctx, intent.Shipping.Email, name)
	if err != nil {
		return FulfillmentResult{}, NewStorageError(err, "failed to upsert customer %s", intent.Shipping.Email)
	}

	// 明細の実体化：画像IDを一括で引いて使えるURLに解決する。
	// 1件でも欠けたらベンダー呼び出し前に中断（部分フルフィルメントはしない）
	items, err := u.materializeItems(ctx, intent.Items)
	if err != nil {
		return FulfillmentResult{}, err
	}

	// ベンダー商品のprovisioning（明細ごとに並行、全部の完了を待つ）
	if err := u.provisionProducts(ctx, items); err != nil {
		return FulfillmentResult{}, err
	}

	// 全明細をまとめて1回で発注
	vendorOrderID, err := u.submitVendorOrder(ctx, intent, items)
	if err != nil {
		return FulfillmentResult{}, err
	}

	// 注文＋明細＋配送先スナップショットを1トランザクションで書く
	orderID, err := u.persistOrder(ctx, intent, customer.ID, vendorOrderID, items)
	if errors.Is(err, errLostPaymentRace) {
		// 書き込み直前で別配送に負けた。既存注文を引き直して処理済みとして返す
		winner, found, ferr := u.orders.FindByPaymentID(ctx, intent.PaymentID)
		if ferr != nil || !found {
			return FulfillmentResult{}, NewStorageError(ferr, "payment %s conflicted but winner not found", intent.PaymentID)
		}
		return FulfillmentResult{OrderID: winner.ID, AlreadyProcessed: true}, nil
	}
	if err != nil {
		return FulfillmentResult{}, err
	}

	// 確認メールはbest-effort。失敗はログだけ残して成功のまま返す
	u.sendConfirmation(ctx, intent, orderID, items)

	return FulfillmentResult{OrderID: orderID}, nil
}

func (u *FulfillmentUsecase) materializeItems(ctx context.Context, intents []LineItemIntent) ([]fulfillmentItem, error) {
	ids := make([]int64, 0, len(intents))
	for _, it := range intents {
		ids = append(ids, it.ImageID)
	}

	images, err := u.images.FindByIDs(ctx, ids)
	if err != nil {
		return nil, NewStorageError(err, "failed to load generated images")
	}
	byID := make(map[int64]model.GeneratedImage, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	items := make([]fulfillmentItem, 0, len(intents))
	for _, it := range intents {
		img, ok := byID[it.ImageID]
		if !ok {
			return nil, NewNotFoundError("generated image %d not found", it.ImageID)
		}
		url := img.FulfillmentURL()
		if url == "" {
			return nil, NewNotFoundError("generated image %d has no usable url", it.ImageID)
		}
		items = append(items, fulfillmentItem{
			ImageID:  it.ImageID,
			Quantity: it.Quantity,
			ImageURL: url,
		})
	}
	return items, nil
}

// provisionProducts は明細ごとに画像アップロード→商品作成を行う。
// 呼び出しは並行だが、どれかが失敗しても残りの完了は待つ（途中キャンセルしない）。
// 失敗時に作成済み商品の後始末はしない（型コメント参照）。
func (u *FulfillmentUsecase) provisionProducts(ctx context.Context, items []fulfillmentItem) error {
	variants, err := u.vendor.GetVariants(ctx, fulfillment.StickerBlueprintID, fulfillment.StickerPrintProviderID)
	if err != nil {
		return u.wrapVendorError(err, "failed to list sticker variants")
	}
	if len(variants) == 0 {
		return NewVendorError(nil, "vendor offers no sticker variants")
	}
	// 提供リストの先頭を決め打ちで使う
	variantID := variants[0].ID

	var g errgroup.Group
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			uploadID, err := u.vendor.UploadImage(ctx, item.ImageURL)
			if err != nil {
				return u.wrapVendorError(err, "failed to upload image %d", item.ImageID)
			}

			productID, err := u.vendor.CreateProduct(ctx, fulfillment.CreateProductInput{
				Title:           fmt.Sprintf("Custom Sticker #%d", item.ImageID),
				Description:     "AI-generated sticker from chaosstickers.com",
				BlueprintID:     fulfillment.StickerBlueprintID,
				PrintProviderID: fulfillment.StickerPrintProviderID,
				UploadID:        uploadID,
				VariantID:       variantID,
			})
			if err != nil {
				return u.wrapVendorError(err, "failed to create product for image %d", item.ImageID)
			}

			item.ProductID = productID
			item.VariantID = variantID
			return nil
		})
	}
	return g.Wait()
}

func (u *FulfillmentUsecase) submitVendorOrder(ctx context.Context, intent OrderIntent, items []fulfillmentItem) (string, error) {
	lineItems := make([]fulfillment.OrderLineItem, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, fulfillment.OrderLineItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}

	s := intent.Shipping
	vendorOrderID, err := u.vendor.SubmitOrder(ctx, fulfillment.OrderRequest{
		ExternalID: intent.PaymentID,
		LineItems:  lineItems,
		AddressTo: fulfillment.AddressTo{
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Email:     s.Email,
			Phone:     s.Phone,
			Country:   s.Country,
			Region:    s.Region,
			Address1:  s.Address1,
			Address2:  s.Address2,
			City:      s.City,
			Zip:       s.Zip,
		},
	})
	if err != nil {
		return "", u.wrapVendorError(err, "failed to submit fulfillment order for payment %s", intent.PaymentID)
	}
	return vendorOrderID, nil
}

func (u *FulfillmentUsecase) persistOrder(ctx context.Context, intent OrderIntent, customerID int64, vendorOrderID string, items []fulfillmentItem) (int64, error) {
	var orderID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s := intent.Shipping
		id, err := r.Orders().Create(ctx, model.Order{
			CustomerID:      customerID,
			PrintifyOrderID: &vendorOrderID,
			PaymentID:       intent.PaymentID,
			Status:          model.OrderStatusPending,
			FirstName:       s.FirstName,
			LastName:        s.LastName,
			Email:           s.Email,
			Phone:           s.Phone,
			Country:         s.Country,
			Region:          s.Region,
			Address1:        s.Address1,
			Address2:        s.Address2,
			City:            s.City,
			Zip:             s.Zip,
		})
		if errors.Is(err, repo.ErrDuplicatePayment) {
			return errLostPaymentRace
		}
		if err != nil {
			return NewStorageError(err, "failed to create order for payment %s", intent.PaymentID)
		}

		orderItems := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			orderItems = append(orderItems, model.OrderItem{
				PrintifyProductID: it.ProductID,
				PrintifyVariantID: it.VariantID,
				Quantity:          it.Quantity,
				ImageURL:          it.ImageURL,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, id, orderItems); err != nil {
			return NewStorageError(err, "failed to create order items for payment %s", intent.PaymentID)
		}

		// ベンダー発注は確定済みなので同じトランザクション内でprocessingへ進める
		if err := r.Orders().UpdateStatus(ctx, id, model.OrderStatusProcessing); err != nil {
			return NewStorageError(err, "failed to mark order %d processing", id)
		}

		orderID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (u *FulfillmentUsecase) sendConfirmation(ctx context.Context, intent OrderIntent, orderID int64, items []fulfillmentItem) {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.ImageURL)
	}

	err := u.notifier.SendOrderConfirmation(ctx, notification.OrderConfirmation{
		To:            intent.Shipping.Email,
		OrderID:       orderID,
		TrackingURL:   fmt.Sprintf("%s/orders/%d", strings.TrimRight(u.feURL, "/"), orderID),
		ItemImageURLs: urls,
	})
	if err != nil {
		log.Warnf("order %d: confirmation email failed: %v", orderID, err)
	}
}

// ベンダー起因のエラーを分類する。認証情報の未設定は設定不備として扱う
func (u *FulfillmentUsecase) wrapVendorError(err error, format string, args ...interface{}) error {
	if errors.Is(err, fulfillment.ErrMissingAPIKey) {
		return NewConfigurationError("PRINTIFY_API_KEY is not set")
	}
	if errors.Is(err, fulfillment.ErrMissingShopID) {
		return NewConfigurationError("PRINTIFY_SHOP_ID is not set")
	}
	return NewVendorError(err, format, args...)
}
