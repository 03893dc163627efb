package record

// Schema creates the system-of-record tables for the sqlite development
// backend. The postgres deployment schema is owned by the loan-origination
// platform; this mirror carries the columns the engine reads.
const Schema = `
CREATE TABLE IF NOT EXISTS proposals (
    pid TEXT PRIMARY KEY,
    deal_pid TEXT NOT NULL,
    loan_type TEXT,
    loan_purpose TEXT,
    loan_amount REAL,
    citizenship_type TEXT,
    visa_type TEXT,
    military_service TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS borrowers (
    pid TEXT PRIMARY KEY,
    deal_pid TEXT NOT NULL,
    first_name TEXT,
    last_name TEXT,
    citizenship_type TEXT,
    marital_status TEXT,
    dependents_count INTEGER
);
CREATE INDEX IF NOT EXISTS idx_borrowers_deal ON borrowers (deal_pid);

CREATE TABLE IF NOT EXISTS jobs (
    pid TEXT PRIMARY KEY,
    borrower_pid TEXT NOT NULL,
    employer_name TEXT,
    position TEXT,
    employment_type TEXT,
    monthly_income REAL,
    years_employed REAL
);
CREATE INDEX IF NOT EXISTS idx_jobs_borrower ON jobs (borrower_pid);

CREATE TABLE IF NOT EXISTS assets (
    pid TEXT PRIMARY KEY,
    borrower_pid TEXT NOT NULL,
    asset_type TEXT,
    institution_name TEXT,
    market_value REAL
);
CREATE INDEX IF NOT EXISTS idx_assets_borrower ON assets (borrower_pid);

CREATE TABLE IF NOT EXISTS liabilities (
    pid TEXT PRIMARY KEY,
    borrower_pid TEXT NOT NULL,
    liability_type TEXT,
    creditor_name TEXT,
    monthly_payment REAL,
    unpaid_balance REAL
);
CREATE INDEX IF NOT EXISTS idx_liabilities_borrower ON liabilities (borrower_pid);

CREATE TABLE IF NOT EXISTS real_estate_owned (
    pid TEXT PRIMARY KEY,
    borrower_pid TEXT NOT NULL,
    property_type TEXT,
    occupancy TEXT,
    market_value REAL,
    monthly_rental_income REAL
);
CREATE INDEX IF NOT EXISTS idx_reo_borrower ON real_estate_owned (borrower_pid);

CREATE TABLE IF NOT EXISTS properties (
    deal_pid TEXT PRIMARY KEY,
    address_line TEXT,
    city TEXT,
    state TEXT,
    zip_code TEXT,
    property_type TEXT,
    occupancy TEXT,
    appraised_value REAL
);

CREATE TABLE IF NOT EXISTS answered_questions (
    deal_pid TEXT NOT NULL,
    question_id TEXT NOT NULL,
    answered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (deal_pid, question_id)
);
`
