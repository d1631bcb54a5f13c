package model

import (
    "database/sql"
    "time"
)

// Role tags carried in the session token.  The values are part of the wire
// contract with the front end and must not be renumbered.
const (
    RoleUser      = 0 // end user
    RoleAdmin     = 1 // administrator
    RoleShopOwner = 2 // shop owner
)

// User represents an end-user principal as stored in the `users` table.
// Each field corresponds to a column.  The json tags are omitted because
// these structs are used internally by the repository layer; handlers define
// separate response types with appropriate tags.
//
// At most one password reset token may be outstanding per user: the
// ResetTokenHash/ResetTokenExpiresAt pair is either both set (Pending) or
// both NULL (NoToken).  A digest without a future expiry is unusable and
// treated as absent.
type User struct {
    ID                  uint64         // users.id
    Fullname            string         // users.fullname
    Email               string         // users.email (unique)
    PasswordHash        string         // users.password_hash (bcrypt)
    DOB                 string         // users.dob
    Phone               string         // users.phone
    Address             string         // users.address
    ShoppingPreference  string         // users.shopping_preference
    PhotoURL            string         // users.photo_url (set by federated sign-in)
    Role                int            // users.role (0 user, 1 admin)
    ResetTokenHash      sql.NullString // users.reset_token_hash (SHA-256 hex, nullable)
    ResetTokenExpiresAt sql.NullTime   // users.reset_token_expires_at (nullable)
    CreatedAt           time.Time      // users.created_at
    UpdatedAt           time.Time      // users.updated_at
}

// Shop represents a shop-owner principal and its storefront as stored in the
// `shops` table.  The shop shares the email login namespace with users but
// lives in its own table; account lookup probes users first, shops second.
type Shop struct {
    ID                  uint64         // shops.id
    OwnerName           string         // shops.owner_name
    OwnerEmail          string         // shops.owner_email
    OwnerContact        string         // shops.owner_contact
    PasswordHash        string         // shops.password_hash (bcrypt)
    NIC                 string         // shops.nic
    BusinessRegNo       string         // shops.business_reg_no
    TaxID               string         // shops.tax_id
    ShopName            string         // shops.shop_name
    Email               string         // shops.email (login email, unique)
    BusinessType        string         // shops.business_type
    Category            string         // shops.category
    Description         string         // shops.description
    OperatingHoursFrom  string         // shops.operating_hours_from
    OperatingHoursTo    string         // shops.operating_hours_to
    Location            string         // shops.location
    Contact             string         // shops.contact
    LogoURL             string         // shops.logo_url
    ResetTokenHash      sql.NullString // shops.reset_token_hash (nullable)
    ResetTokenExpiresAt sql.NullTime   // shops.reset_token_expires_at (nullable)
    CreatedAt           time.Time      // shops.created_at
    UpdatedAt           time.Time      // shops.updated_at
}
