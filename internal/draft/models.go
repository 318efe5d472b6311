package draft

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Draft is one complete, independently switchable snapshot of business-plan,
// financial and vendor data. Drafts are the unit of persistence and of
// side-by-side comparison.
type Draft struct {
	ID            string        `json:"id" bson:"id"`
	Name          string        `json:"name" bson:"name"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
	BusinessPlan  BusinessPlan  `json:"businessPlan" bson:"businessPlan"`
	FinancialData FinancialData `json:"financialData" bson:"financialData"`
	Vendors       []Vendor      `json:"vendors" bson:"vendors"`
}

// Summary is the lightweight listing form of a draft (no content payload).
type Summary struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// View is the derived read model for the active draft. All sections are
// always present so consumers never need a nil check.
type View struct {
	BusinessPlan  BusinessPlan  `json:"businessPlan"`
	FinancialData FinancialData `json:"financialData"`
	Vendors       []Vendor      `json:"vendors"`
}

// BusinessPlan holds the eight fixed narrative sections of the plan.
// Sections and their fields are known in advance; values are free-form text.
type BusinessPlan struct {
	Ideation           Ideation           `json:"ideation" bson:"ideation"`
	ElevatorPitch      ElevatorPitch      `json:"elevatorPitch" bson:"elevatorPitch"`
	ExecutiveSummary   ExecutiveSummary   `json:"executiveSummary" bson:"executiveSummary"`
	MarketAnalysis     MarketAnalysis     `json:"marketAnalysis" bson:"marketAnalysis"`
	OperationsPlan     OperationsPlan     `json:"operationsPlan" bson:"operationsPlan"`
	ManagementTeam     ManagementTeam     `json:"managementTeam" bson:"managementTeam"`
	ServiceDescription ServiceDescription `json:"serviceDescription" bson:"serviceDescription"`
	MarketingStrategy  MarketingStrategy  `json:"marketingStrategy" bson:"marketingStrategy"`
}

type Ideation struct {
	Concept        string `json:"concept" bson:"concept"`
	Inspiration    string `json:"inspiration" bson:"inspiration"`
	TargetCustomer string `json:"targetCustomer" bson:"targetCustomer"`
}

type ElevatorPitch struct {
	Pitch   string `json:"pitch" bson:"pitch"`
	Tagline string `json:"tagline" bson:"tagline"`
}

type ExecutiveSummary struct {
	Summary          string `json:"summary" bson:"summary"`
	MissionStatement string `json:"missionStatement" bson:"missionStatement"`
	VisionStatement  string `json:"visionStatement" bson:"visionStatement"`
}

type MarketAnalysis struct {
	IndustryOverview string `json:"industryOverview" bson:"industryOverview"`
	TargetMarket     string `json:"targetMarket" bson:"targetMarket"`
	Competition      string `json:"competition" bson:"competition"`
	MarketTrends     string `json:"marketTrends" bson:"marketTrends"`
}

type OperationsPlan struct {
	Location         string `json:"location" bson:"location"`
	HoursOfOperation string `json:"hoursOfOperation" bson:"hoursOfOperation"`
	Staffing         string `json:"staffing" bson:"staffing"`
	Suppliers        string `json:"suppliers" bson:"suppliers"`
}

type ManagementTeam struct {
	Founders              string `json:"founders" bson:"founders"`
	Advisors              string `json:"advisors" bson:"advisors"`
	OrganizationStructure string `json:"organizationStructure" bson:"organizationStructure"`
}

type ServiceDescription struct {
	MenuHighlights string `json:"menuHighlights" bson:"menuHighlights"`
	ServiceStyle   string `json:"serviceStyle" bson:"serviceStyle"`
	PriceRange     string `json:"priceRange" bson:"priceRange"`
}

type MarketingStrategy struct {
	BrandPositioning string `json:"brandPositioning" bson:"brandPositioning"`
	Channels         string `json:"channels" bson:"channels"`
	Promotions       string `json:"promotions" bson:"promotions"`
	LoyaltyProgram   string `json:"loyaltyProgram" bson:"loyaltyProgram"`
}

// FinancialData holds the five fixed numeric categories. Percentage fields
// are stored as fractions in [0,1].
type FinancialData struct {
	Revenue           Revenue           `json:"revenue" bson:"revenue"`
	COGS              COGS              `json:"cogs" bson:"cogs"`
	OperatingExpenses OperatingExpenses `json:"operatingExpenses" bson:"operatingExpenses"`
	StartupCosts      StartupCosts      `json:"startupCosts" bson:"startupCosts"`
	FundingSources    FundingSources    `json:"fundingSources" bson:"fundingSources"`
}

type Revenue struct {
	FoodSales     float64 `json:"foodSales" bson:"foodSales"`
	BeverageSales float64 `json:"beverageSales" bson:"beverageSales"`
	CateringSales float64 `json:"cateringSales" bson:"cateringSales"`
	AverageCheck  float64 `json:"averageCheck" bson:"averageCheck"`
}

type COGS struct {
	FoodCostPercent     float64 `json:"foodCostPercent" bson:"foodCostPercent"`
	BeverageCostPercent float64 `json:"beverageCostPercent" bson:"beverageCostPercent"`
	PackagingCost       float64 `json:"packagingCost" bson:"packagingCost"`
}

type OperatingExpenses struct {
	Rent      float64 `json:"rent" bson:"rent"`
	Payroll   float64 `json:"payroll" bson:"payroll"`
	Utilities float64 `json:"utilities" bson:"utilities"`
	Marketing float64 `json:"marketing" bson:"marketing"`
	Insurance float64 `json:"insurance" bson:"insurance"`
}

type StartupCosts struct {
	LeaseholdImprovements float64 `json:"leaseholdImprovements" bson:"leaseholdImprovements"`
	KitchenEquipment      float64 `json:"kitchenEquipment" bson:"kitchenEquipment"`
	FurnitureFixtures     float64 `json:"furnitureFixtures" bson:"furnitureFixtures"`
	LicensesPermits       float64 `json:"licensesPermits" bson:"licensesPermits"`
	WorkingCapital        float64 `json:"workingCapital" bson:"workingCapital"`
}

type FundingSources struct {
	OwnerInvestment float64 `json:"ownerInvestment" bson:"ownerInvestment"`
	BankLoan        float64 `json:"bankLoan" bson:"bankLoan"`
	InvestorEquity  float64 `json:"investorEquity" bson:"investorEquity"`
}

// Vendor is one supplier/contractor record. List order is insertion order
// and carries no meaning.
type Vendor struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Company  string `json:"company" bson:"company"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
	Category string `json:"category,omitempty" bson:"category,omitempty"`
	Priority string `json:"priority,omitempty" bson:"priority,omitempty"`
	Notes    string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Key identifies a vendor for set comparison: the id when present,
// otherwise name+company.
func (v Vendor) Key() string {
	if v.ID != "" {
		return v.ID
	}
	return v.Name + "|" + v.Company
}

// NewID returns a new opaque draft identifier.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "draft_" + hex.EncodeToString(b)
}

// New creates a blank draft with all sections present and empty values.
func New(name string) *Draft {
	now := time.Now().UTC()
	return &Draft{
		ID:        NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Vendors:   []Vendor{},
	}
}

// Clone returns a deep copy of the draft. Content structs are value types,
// so only the vendor slice needs an explicit copy.
func (d *Draft) Clone() *Draft {
	cp := *d
	cp.Vendors = make([]Vendor, len(d.Vendors))
	copy(cp.Vendors, d.Vendors)
	return &cp
}

// Summarize returns the listing form of the draft.
func (d *Draft) Summarize() Summary {
	return Summary{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}
