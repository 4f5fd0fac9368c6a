// Package repository provides a generic Bun repository that turns client
// query input (pagination, where, order, data type, relations) into
// validated queries, next to plain CRUD and transactional helpers.
package repository
