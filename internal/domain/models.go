// package domain/models.go
package domain

// EntryKind classifica uma linha de extrato pelo sinal do valor.
type EntryKind string

// Tipos possíveis de lançamento no extrato.
const (
	KindCredit  EntryKind = "credit"
	KindDebit   EntryKind = "debit"
	KindNeutral EntryKind = "neutral"
	KindBalance EntryKind = "balance"
)

// KindFromAmount deriva o tipo de um lançamento a partir do valor.
func KindFromAmount(amount *float64) EntryKind {
	switch {
	case amount == nil || *amount == 0:
		return KindNeutral
	case *amount > 0:
		return KindCredit
	default:
		return KindDebit
	}
}

// --- Modelos de Extrato Bancário ---

// StatementEntry representa uma linha do extrato bancário importado.
type StatementEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Document    string    `json:"document,omitempty"`
	Amount      *float64  `json:"amount"`
	Balance     *float64  `json:"balance"`
	Kind        EntryKind `json:"kind"`
	Source      string    `json:"source,omitempty"`
}

// Value devolve o valor do lançamento, ou zero quando ausente.
func (e StatementEntry) Value() float64 {
	if e.Amount == nil {
		return 0
	}
	return *e.Amount
}

// StatementHeader guarda os campos de cabeçalho do extrato (titular, agência, conta, período).
type StatementHeader struct {
	AccountHolder string `json:"account_holder,omitempty"`
	Branch        string `json:"branch,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	Period        string `json:"period,omitempty"`
}

// ParseWarning registra uma coerção silenciosa feita durante a leitura da planilha.
type ParseWarning struct {
	File    string `json:"file,omitempty"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// FileOutcome resume o resultado da leitura de um arquivo dentro de uma importação.
type FileOutcome struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// ImportBatch é o resultado de uma ação de importação (um ou mais arquivos).
type ImportBatch struct {
	BatchID  string           `json:"batch_id"`
	Bank     string           `json:"bank"`
	Header   StatementHeader  `json:"header"`
	Entries  []StatementEntry `json:"entries"`
	Files    []FileOutcome    `json:"files"`
	Warnings []ParseWarning   `json:"warnings,omitempty"`
}

// --- Modelos de Classificação ---

// Category identifica um grupo de créditos do extrato.
type Category string

// Categorias de crédito, na ordem em que são testadas.
const (
	CategoryPix                Category = "pix"
	CategoryRedeDebito         Category = "rede_debito"
	CategoryCieloDebito        Category = "cielo_debito"
	CategoryRedeAntecipacao    Category = "rede_antecipacao"
	CategoryDepositoDinheiro   Category = "deposito_dinheiro"
	CategoryLiquidacaoCobranca Category = "liquidacao_cobranca"
	CategoryRedeCredito        Category = "rede_credito"
	CategoryOutros             Category = "outros"
)

// CategoryBucket agrupa os créditos de uma categoria.
type CategoryBucket struct {
	Category Category         `json:"category"`
	Label    string           `json:"label"`
	Total    float64          `json:"total"`
	Count    int              `json:"count"`
	Average  float64          `json:"average"`
	Entries  []StatementEntry `json:"entries"`
}

// DebitGroup agrupa débitos pela descrição exata.
type DebitGroup struct {
	Description string  `json:"description"`
	Total       float64 `json:"total"`
	Count       int     `json:"count"`
}

// Summary contém os totais exibidos nos cards da tela de extrato.
type Summary struct {
	TotalCredits float64  `json:"total_credits"`
	TotalDebits  float64  `json:"total_debits"`
	CreditCount  int      `json:"credit_count"`
	DebitCount   int      `json:"debit_count"`
	FinalBalance *float64 `json:"final_balance"`
}

// --- Modelos do ERP (TOTVS) ---

// PaymentMethodPix é o código de forma de pagamento que identifica liquidações via PIX.
const PaymentMethodPix = 20

// ReceivableRecord representa um título do contas a receber do ERP.
type ReceivableRecord struct {
	BranchCode        int      `json:"branchCode"`
	CustomerCode      int      `json:"customerCode"`
	CustomerCpfCnpj   string   `json:"customerCpfCnpj,omitempty"`
	CustomerName      string   `json:"customerName,omitempty"`
	InvoiceNumber     int      `json:"invoiceNumber"`
	Installment       int      `json:"installment"`
	DueDate           *string  `json:"dueDate"`
	SettlementDate    *string  `json:"settlementDate"`
	InvoiceValue      float64  `json:"invoiceValue"`
	PaidValue         *float64 `json:"paidValue"`
	NetValue          *float64 `json:"netValue"`
	PaymentMethodCode int      `json:"paymentMethodCode"`
	Status            int      `json:"status"`
	ChargeType        int      `json:"chargeType"`
}

// Person representa o cadastro resumido de uma pessoa (cliente) no ERP.
type Person struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	CpfCnpj string `json:"cpfCnpj,omitempty"`
}

// LedgerEntry representa um lançamento do extrato de razão contábil.
type LedgerEntry struct {
	AccountNumber  int     `json:"accountNumber"`
	AccountName    string  `json:"accountName,omitempty"`
	BranchCode     int     `json:"branchCode"`
	MovementDate   string  `json:"movementDate"`
	History        string  `json:"history"`
	DocumentNumber string  `json:"documentNumber,omitempty"`
	DebitValue     float64 `json:"debitValue"`
	CreditValue    float64 `json:"creditValue"`
	Balance        float64 `json:"balance"`
}

// Order representa um pedido/nota de uma pessoa no ERP.
type Order struct {
	BranchCode      int     `json:"branchCode"`
	OrderCode       int     `json:"orderCode"`
	PersonCode      int     `json:"personCode"`
	TransactionCode int     `json:"transactionCode"`
	TransactionDate string  `json:"transactionDate"`
	InvoiceNumber   int     `json:"invoiceNumber"`
	AccessKey       string  `json:"accessKey,omitempty"`
	TotalValue      float64 `json:"totalValue"`
	Status          string  `json:"status"`
}

// --- Modelos de Conciliação ---

// ReconciliationResult liga um título PIX do ERP a (no máximo) um crédito do extrato.
type ReconciliationResult struct {
	Record         ReceivableRecord `json:"record"`
	SettlementDate string           `json:"settlement_date"`
	PaidValue      float64          `json:"paid_value"`
	Statement      *StatementEntry  `json:"statement"`
	StatementIndex int              `json:"statement_index"`
	Difference     *float64         `json:"difference"`
	Matched        bool             `json:"matched"`
}

// ReconciliationReport é o resultado completo de uma conciliação PIX.
type ReconciliationReport struct {
	Results           []ReconciliationResult `json:"results"`
	ERPTotal          float64                `json:"erp_total"`
	StatementTotal    float64                `json:"statement_total"`
	MatchedCount      int                    `json:"matched_count"`
	TotalCount        int                    `json:"total_count"`
	FeeTotal          float64                `json:"fee_total"`
	MatchedDifference float64                `json:"matched_difference"`
}
