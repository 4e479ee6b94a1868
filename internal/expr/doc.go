/*
Package expr processes templated SQL text. It covers everything that looks
inside a statement before it reaches the database: placeholder substitution,
splitting batches into statements, comment stripping, positional marker
shorthand, and parsing of CALL and USING argument lists. It does not interact
with databases.

# Placeholders

A placeholder is a colon followed by one or more of the characters
[@_A-Za-z0-9], for example ":name" or ":@rc". A colon not followed by such a
character is literal text, as is the "::" cast operator. Placeholders inside
quoted regions ('...', "..." or [...]) are part of the literal and are never
substituted.

# Expansion

Expansion is split in two stages. The Parse stage turns the template into a
list of bypass and placeholder parts; it never fails, malformed quoting is
passed through verbatim. The Expand stage looks each placeholder up in a
variable environment and writes the value as SQL text:

  - strings and JSON serialised structs are wrapped in single quotes, with
    embedded single quotes doubled, when quoting is enabled;
  - numbers and raw values (text starting "0x") are written verbatim;
  - lists are written as comma separated elements, each element quoted unless
    it is a number or a raw value.

A placeholder whose name is not in the environment is left in the output
unchanged.
*/
package expr
