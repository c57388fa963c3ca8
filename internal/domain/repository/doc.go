// Package repository define los contratos de acceso a datos del core.
//
// Cada interfaz cubre una familia de entidades (tenants, clients, tokens,
// codes, consents, MFA) y es implementada por los adapters en internal/store.
// Los services dependen únicamente de estas interfaces, nunca de un driver
// concreto.
//
// Convenciones:
//   - Toda entidad tenant-scoped lleva TenantID y los adapters filtran por
//     tenant en cada query.
//   - Ningún secreto se persiste en claro: las columnas *Hash guardan
//     SHA-256 base64url del plaintext.
//   - "No existe" se señala con ErrNotFound, nunca con (nil, nil).
package repository
