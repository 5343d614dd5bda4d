package agent

// Canonical balance-sheet item names. The population factory creates items
// under these names and the variant waterfalls look them up by name, so the
// two sides must agree.
const (
	ItemCash          = "cash"
	ItemGilts         = "gilt_holdings"
	ItemILGilts       = "il_gilt_holdings"
	ItemCorpBonds     = "corp_bond_holdings"
	ItemEquities      = "equity_holdings"
	ItemBasisTrades   = "basis_trade_positions"
	ItemDerivatives   = "derivatives"
	ItemMarginPosted  = "margin_posted"
	ItemABSHoldings   = "abs_holdings"

	// Bank-only items.
	ItemFacilityEligible = "facility_eligible_collateral"
	ItemCET1             = "cet1_capital"
	ItemWholesale        = "wholesale_funding"
	ItemRepoLending      = "repo_lending"

	// NBFI funding items.
	ItemRepoBorrowing      = "repo_borrowing"
	ItemUnencumbered       = "unencumbered_collateral"
	ItemCommittedRepoLines = "committed_repo_lines"
	ItemRCF                = "rcf_capacity"
)
