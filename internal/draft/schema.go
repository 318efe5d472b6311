package draft

// Field accessor tables. Patching and comparison both walk these, so the
// section order and per-section field order are defined in exactly one place
// (declaration order of the structs in models.go).

// TextField is one addressable string field within a business-plan section.
type TextField struct {
	Name  string
	Value *string
}

// NumField is one addressable numeric field within a financial category.
type NumField struct {
	Name  string
	Value *float64
}

// PlanSection is a named business-plan section with its fields.
type PlanSection struct {
	Name   string
	Fields []TextField
}

// FinCategory is a named financial category with its fields.
type FinCategory struct {
	Name   string
	Fields []NumField
}

// Sections returns every business-plan section in fixed order. Field values
// are pointers into bp, so writes through them mutate the plan.
func (bp *BusinessPlan) Sections() []PlanSection {
	return []PlanSection{
		{Name: "ideation", Fields: []TextField{
			{"concept", &bp.Ideation.Concept},
			{"inspiration", &bp.Ideation.Inspiration},
			{"targetCustomer", &bp.Ideation.TargetCustomer},
		}},
		{Name: "elevatorPitch", Fields: []TextField{
			{"pitch", &bp.ElevatorPitch.Pitch},
			{"tagline", &bp.ElevatorPitch.Tagline},
		}},
		{Name: "executiveSummary", Fields: []TextField{
			{"summary", &bp.ExecutiveSummary.Summary},
			{"missionStatement", &bp.ExecutiveSummary.MissionStatement},
			{"visionStatement", &bp.ExecutiveSummary.VisionStatement},
		}},
		{Name: "marketAnalysis", Fields: []TextField{
			{"industryOverview", &bp.MarketAnalysis.IndustryOverview},
			{"targetMarket", &bp.MarketAnalysis.TargetMarket},
			{"competition", &bp.MarketAnalysis.Competition},
			{"marketTrends", &bp.MarketAnalysis.MarketTrends},
		}},
		{Name: "operationsPlan", Fields: []TextField{
			{"location", &bp.OperationsPlan.Location},
			{"hoursOfOperation", &bp.OperationsPlan.HoursOfOperation},
			{"staffing", &bp.OperationsPlan.Staffing},
			{"suppliers", &bp.OperationsPlan.Suppliers},
		}},
		{Name: "managementTeam", Fields: []TextField{
			{"founders", &bp.ManagementTeam.Founders},
			{"advisors", &bp.ManagementTeam.Advisors},
			{"organizationStructure", &bp.ManagementTeam.OrganizationStructure},
		}},
		{Name: "serviceDescription", Fields: []TextField{
			{"menuHighlights", &bp.ServiceDescription.MenuHighlights},
			{"serviceStyle", &bp.ServiceDescription.ServiceStyle},
			{"priceRange", &bp.ServiceDescription.PriceRange},
		}},
		{Name: "marketingStrategy", Fields: []TextField{
			{"brandPositioning", &bp.MarketingStrategy.BrandPositioning},
			{"channels", &bp.MarketingStrategy.Channels},
			{"promotions", &bp.MarketingStrategy.Promotions},
			{"loyaltyProgram", &bp.MarketingStrategy.LoyaltyProgram},
		}},
	}
}

// Section returns the named section, or false when unknown.
func (bp *BusinessPlan) Section(name string) (PlanSection, bool) {
	for _, s := range bp.Sections() {
		if s.Name == name {
			return s, true
		}
	}
	return PlanSection{}, false
}

// ApplyPatch merges the given field values into one section. Unknown fields
// in the patch are ignored; sibling fields are untouched. Returns false when
// the section name is unknown.
func (bp *BusinessPlan) ApplyPatch(section string, patch map[string]string) bool {
	s, ok := bp.Section(section)
	if !ok {
		return false
	}
	for _, f := range s.Fields {
		if v, ok := patch[f.Name]; ok {
			*f.Value = v
		}
	}
	return true
}

// Categories returns every financial category in fixed order. Field values
// are pointers into fd, so writes through them mutate the data.
func (fd *FinancialData) Categories() []FinCategory {
	return []FinCategory{
		{Name: "revenue", Fields: []NumField{
			{"foodSales", &fd.Revenue.FoodSales},
			{"beverageSales", &fd.Revenue.BeverageSales},
			{"cateringSales", &fd.Revenue.CateringSales},
			{"averageCheck", &fd.Revenue.AverageCheck},
		}},
		{Name: "cogs", Fields: []NumField{
			{"foodCostPercent", &fd.COGS.FoodCostPercent},
			{"beverageCostPercent", &fd.COGS.BeverageCostPercent},
			{"packagingCost", &fd.COGS.PackagingCost},
		}},
		{Name: "operatingExpenses", Fields: []NumField{
			{"rent", &fd.OperatingExpenses.Rent},
			{"payroll", &fd.OperatingExpenses.Payroll},
			{"utilities", &fd.OperatingExpenses.Utilities},
			{"marketing", &fd.OperatingExpenses.Marketing},
			{"insurance", &fd.OperatingExpenses.Insurance},
		}},
		{Name: "startupCosts", Fields: []NumField{
			{"leaseholdImprovements", &fd.StartupCosts.LeaseholdImprovements},
			{"kitchenEquipment", &fd.StartupCosts.KitchenEquipment},
			{"furnitureFixtures", &fd.StartupCosts.FurnitureFixtures},
			{"licensesPermits", &fd.StartupCosts.LicensesPermits},
			{"workingCapital", &fd.StartupCosts.WorkingCapital},
		}},
		{Name: "fundingSources", Fields: []NumField{
			{"ownerInvestment", &fd.FundingSources.OwnerInvestment},
			{"bankLoan", &fd.FundingSources.BankLoan},
			{"investorEquity", &fd.FundingSources.InvestorEquity},
		}},
	}
}

// Category returns the named category, or false when unknown.
func (fd *FinancialData) Category(name string) (FinCategory, bool) {
	for _, c := range fd.Categories() {
		if c.Name == name {
			return c, true
		}
	}
	return FinCategory{}, false
}

// ApplyPatch merges the given field values into one category. Unknown fields
// are ignored. Returns false when the category name is unknown.
func (fd *FinancialData) ApplyPatch(category string, patch map[string]float64) bool {
	c, ok := fd.Category(category)
	if !ok {
		return false
	}
	for _, f := range c.Fields {
		if v, ok := patch[f.Name]; ok {
			*f.Value = v
		}
	}
	return true
}
