package engine

import (
	"github.com/shopspring/decimal"
)

// CartLineItem is a single line of the shopper's cart as it was assembled.
// It is input only; the engine never mutates it. A re-assigned line keeps its
// ProductID, Name and Quantity and takes the winning candidate's Store and
// UnitPrice.
type CartLineItem struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Store     string           `json:"store"`
	Quantity  int              `json:"quantity"`
	Category  string           `json:"category,omitempty"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	MaxPrice  *decimal.Decimal `json:"maxPrice,omitempty"`
}

// LineTotal returns UnitPrice * Quantity.
func (it CartLineItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ProductAlternative is a cheaper, in-stock substitute for a cart line item
// found at a different store. Savings is computed against the original line
// ((originalUnitPrice - Price) * Quantity) and is always positive for
// alternatives retained by the resolver.
type ProductAlternative struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Store          string          `json:"store"`
	InStock        bool            `json:"inStock"`
	Savings        decimal.Decimal `json:"savings"`
	SavingsPercent float64         `json:"savingsPercent"`
}

// AlternativeSet maps a cart line item's productID to its ranked alternatives
// (descending by savings). Built once per optimization call, read-only after.
type AlternativeSet map[string][]ProductAlternative

// Best returns the highest-savings alternative for a product, if any.
func (s AlternativeSet) Best(productID string) (ProductAlternative, bool) {
	alts := s[productID]
	if len(alts) == 0 {
		return ProductAlternative{}, false
	}
	return alts[0], true
}

// StoreGroup is the subset of a cart assigned to one store plus its computed
// totals. Groups preserve first-seen-store order of the assignment they were
// built from.
type StoreGroup struct {
	Store                    string          `json:"store"`
	Items                    []CartLineItem  `json:"items"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	ItemCount                int             `json:"itemCount"`
	DeliveryFee              decimal.Decimal `json:"deliveryFee"`
	Total                    decimal.Decimal `json:"total"`
	QualifiesForFreeDelivery bool            `json:"qualifiesForFreeDelivery"`
}

// StrategyType selects one of the four optimization policies.
type StrategyType string

const (
	StrategyBudget      StrategyType = "budget"
	StrategySplitCart   StrategyType = "split-cart"
	StrategyConvenience StrategyType = "convenience"
	StrategyMealPlan    StrategyType = "meal-plan"
)

// AllStrategyTypes lists the strategies in comparison order.
var AllStrategyTypes = []StrategyType{
	StrategyBudget,
	StrategySplitCart,
	StrategyConvenience,
	StrategyMealPlan,
}

// ParseStrategyType maps a request string to a strategy type.
// Unknown or empty input defaults to budget.
func ParseStrategyType(s string) StrategyType {
	switch StrategyType(s) {
	case StrategySplitCart, StrategyConvenience, StrategyMealPlan:
		return StrategyType(s)
	default:
		return StrategyBudget
	}
}

// DeliveryPreference expresses how the shopper weighs delivery cost vs.
// trips. Single-trip forces the plan to one store regardless of maxStores.
// Cheapest matches the default optimizer behavior; fastest is advisory
// until carrier ETAs are available. All three participate in the cache key.
type DeliveryPreference string

const (
	DeliveryCheapest   DeliveryPreference = "cheapest"
	DeliveryFastest    DeliveryPreference = "fastest"
	DeliverySingleTrip DeliveryPreference = "single-trip"
)

// Strategy carries the chosen policy and its constraints.
type Strategy struct {
	Type               StrategyType       `json:"type"`
	DeliveryPreference DeliveryPreference `json:"deliveryPreference,omitempty"`
	MaxStores          int                `json:"maxStores,omitempty"`
	PreferredStores    []string           `json:"preferredStores,omitempty"`
}

// allowsStore reports whether the strategy's preferred-store allow-list
// permits the given store. An empty list permits everything.
func (s Strategy) allowsStore(store string) bool {
	if len(s.PreferredStores) == 0 {
		return true
	}
	for _, p := range s.PreferredStores {
		if p == store {
			return true
		}
	}
	return false
}

// RecommendationKind classifies a savings recommendation.
type RecommendationKind string

const (
	RecommendationBundle             RecommendationKind = "bundle"
	RecommendationSwitchStore        RecommendationKind = "switch_store"
	RecommendationAlternativeProduct RecommendationKind = "alternative_product"
	RecommendationRemoveItem         RecommendationKind = "remove_item"
)

// Recommendation is a ranked, human-readable savings suggestion. It is
// diagnostic: it always reflects the best available option, even when the
// chosen strategy declined to apply it.
type Recommendation struct {
	Kind             RecommendationKind `json:"kind"`
	Message          string             `json:"message"`
	PotentialSavings decimal.Decimal    `json:"potentialSavings"`
	ItemID           string             `json:"itemId,omitempty"`
	SuggestedStore   string             `json:"suggestedStore,omitempty"`
	SuggestedProduct string             `json:"suggestedProduct,omitempty"`
}

// OptimizationResult is the complete output of one optimization call.
type OptimizationResult struct {
	Strategy        StrategyType     `json:"strategy"`
	OriginalTotal   decimal.Decimal  `json:"originalTotal"`
	OptimizedTotal  decimal.Decimal  `json:"optimizedTotal"`
	TotalSavings    decimal.Decimal  `json:"totalSavings"`
	SavingsPercent  float64          `json:"savingsPercent"`
	StoreGroups     []StoreGroup     `json:"storeGroups"`
	Recommendations []Recommendation `json:"recommendations"`
	Alternatives    AlternativeSet   `json:"alternatives"`
}

// Product is a catalog search hit, as returned by the catalog collaborator.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Store    string          `json:"store"`
	Category string          `json:"category,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
	InStock  bool            `json:"inStock"`
}
